package hotel

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

// StayInterval 入住区间 [Checkin, Checkout)
type StayInterval struct {
	Checkin  time.Time
	Checkout time.Time
}

// NewStayInterval 创建入住区间，要求入住早于退房
func NewStayInterval(checkin, checkout time.Time) (StayInterval, error) {
	if !checkin.Before(checkout) {
		return StayInterval{}, errors.ErrStayDatesInvalid
	}
	return StayInterval{Checkin: checkin, Checkout: checkout}, nil
}

// StayOf 预订的入住区间
func StayOf(r *models.Reservation) StayInterval {
	return StayInterval{Checkin: r.CheckinDate, Checkout: r.CheckoutDate}
}

// Overlaps 两个半开区间是否相交，首尾相接不算冲突
func (s StayInterval) Overlaps(other StayInterval) bool {
	return s.Checkin.Before(other.Checkout) && other.Checkin.Before(s.Checkout)
}

// Contains 日期是否落在区间内
func (s StayInterval) Contains(day time.Time) bool {
	return !day.Before(s.Checkin) && day.Before(s.Checkout)
}

// Nights 晚数
func (s StayInterval) Nights() int {
	return utils.NightsBetween(s.Checkin, s.Checkout)
}

// AvailabilityEngine 房间可用性判断
type AvailabilityEngine struct {
	reservationRepo *repository.ReservationRepository
	roomRepo        *repository.RoomRepository
}

// NewAvailabilityEngine 创建可用性引擎
func NewAvailabilityEngine(reservationRepo *repository.ReservationRepository, roomRepo *repository.RoomRepository) *AvailabilityEngine {
	return &AvailabilityEngine{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
	}
}

// WithTx 绑定到事务
func (e *AvailabilityEngine) WithTx(tx *gorm.DB) *AvailabilityEngine {
	return &AvailabilityEngine{
		reservationRepo: e.reservationRepo.WithTx(tx),
		roomRepo:        e.roomRepo.WithTx(tx),
	}
}

// Conflicts 返回房间上与区间冲突的预订，excludeID 非空时忽略该预订
func (e *AvailabilityEngine) Conflicts(ctx context.Context, roomID int64, stay StayInterval, excludeID *int64) ([]*models.Reservation, error) {
	existing, err := e.reservationRepo.ListByRoom(ctx, roomID, excludeID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	var conflicts []*models.Reservation
	for _, r := range existing {
		if stay.Overlaps(StayOf(r)) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts, nil
}

// IsAvailable 房间在区间内是否无冲突预订
func (e *AvailabilityEngine) IsAvailable(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeID *int64) (bool, error) {
	conflicts, err := e.Conflicts(ctx, roomID, StayInterval{Checkin: checkin, Checkout: checkout}, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// AvailableRooms 返回区间内无冲突预订的可售房间
// 维修中和停用的房间不参与
func (e *AvailabilityEngine) AvailableRooms(ctx context.Context, stay StayInterval) ([]*models.Room, error) {
	rooms, err := e.roomRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 只取与区间相交的预订，最终判定仍走 Overlaps
	reservations, err := e.reservationRepo.ListInRange(ctx, stay.Checkin, stay.Checkout)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	busy := make(map[int64]bool)
	for _, r := range reservations {
		if stay.Overlaps(StayOf(r)) {
			busy[r.RoomID] = true
		}
	}

	available := make([]*models.Room, 0, len(rooms))
	for _, room := range rooms {
		if busy[room.ID] || !isBookable(room) {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}

// isBookable 维修中和停用的房间不可售
func isBookable(room *models.Room) bool {
	return !room.IsStatus(models.RoomStatusMaintenance) && !room.IsStatus(models.RoomStatusOutOfOrder)
}
