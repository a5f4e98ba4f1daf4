package hotel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-core/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// 预订事件类型
const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventDeleted    = "deleted"
	EventCheckedIn  = "checked_in"
	EventCheckedOut = "checked_out"
)

// Publisher 消息发布接口，由 pkg/mqtt.Client 实现
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// NopPublisher 丢弃所有消息
type NopPublisher struct{}

// Publish 不做任何事
func (NopPublisher) Publish(string, interface{}) error { return nil }

// ReservationEvent 预订事件
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	ReservationNo string    `json:"reservation_no"`
	GuestID       int64     `json:"guest_id"`
	RoomID        int64     `json:"room_id"`
	RoomNo        string    `json:"room_no,omitempty"`
	CheckinDate   string    `json:"checkin_date"`
	CheckoutDate  string    `json:"checkout_date"`
	RoomStatus    string    `json:"room_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher 预订事件发布器，发布失败只记录日志
type EventPublisher struct {
	publisher Publisher
	prefix    string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewEventPublisher 创建事件发布器，publisher 为 nil 时不发布
func NewEventPublisher(publisher Publisher, topicPrefix string, m *metrics.Metrics) *EventPublisher {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &EventPublisher{
		publisher: publisher,
		prefix:    topicPrefix,
		metrics:   m,
		now:       time.Now,
	}
}

// Topic 事件主题 <prefix>reservations/<type>
func (p *EventPublisher) Topic(eventType string) string {
	return p.prefix + "reservations/" + eventType
}

// Publish 发布预订事件
func (p *EventPublisher) Publish(ctx context.Context, eventType string, reservation *models.Reservation, roomNo, roomStatus string) {
	if p == nil {
		return
	}

	event := &ReservationEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		ReservationNo: reservation.ReservationNo,
		GuestID:       reservation.GuestID,
		RoomID:        reservation.RoomID,
		RoomNo:        roomNo,
		CheckinDate:   utils.FormatDate(reservation.CheckinDate),
		CheckoutDate:  utils.FormatDate(reservation.CheckoutDate),
		RoomStatus:    roomStatus,
		OccurredAt:    p.now().UTC(),
	}
	topic := p.Topic(eventType)

	p.metrics.RecordReservationEvent(eventType)
	tracing.AddEvent(ctx, "reservation."+eventType, tracing.AttrMQTTTopic.String(topic))

	if err := p.publisher.Publish(topic, event); err != nil {
		logger.Warn("发布预订事件失败",
			logger.Module("reservation"),
			logger.ReservationID(reservation.ID),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	p.metrics.RecordMQTTMessage(topic, "out")
}
