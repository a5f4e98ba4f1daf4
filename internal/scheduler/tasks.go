package scheduler

import (
	"context"
	"time"

	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
)

// TaskHandler 酒店定时任务
type TaskHandler struct {
	guests       *hotelService.GuestService
	rooms        *hotelService.RoomService
	reservations *hotelService.ReservationService
	metrics      *metrics.Metrics
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	guests *hotelService.GuestService,
	rooms *hotelService.RoomService,
	reservations *hotelService.ReservationService,
	m *metrics.Metrics,
) *TaskHandler {
	return &TaskHandler{
		guests:       guests,
		rooms:        rooms,
		reservations: reservations,
		metrics:      m,
	}
}

// RefreshOccupancyStats 刷新房态、客人与预订数量指标
func (h *TaskHandler) RefreshOccupancyStats(ctx context.Context) error {
	rooms, err := h.rooms.CountByStatus(ctx)
	if err != nil {
		return err
	}
	guests, err := h.guests.CountByType(ctx)
	if err != nil {
		return err
	}
	stats, err := h.reservations.Stats(ctx)
	if err != nil {
		return err
	}

	h.metrics.SetRoomsByStatus(rooms)
	h.metrics.SetGuestsByType(guests)
	h.metrics.SetReservationCounts(stats.Active, stats.Upcoming)
	return nil
}

// Register 注册酒店任务
func (h *TaskHandler) Register(s *Scheduler, statsInterval time.Duration) {
	s.AddTask("refresh_occupancy_stats", statsInterval, h.RefreshOccupancyStats)
}
