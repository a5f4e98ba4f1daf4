package hotel

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// testToday 测试中的业务日期
var testToday = day(2025, 2, 20)

func fixedClock(today time.Time) Clock {
	return NewClockAt(func() time.Time { return today.Add(10 * time.Hour) }, time.UTC)
}

// recordingPublisher 记录发布的消息
type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads []interface{}
	err      error
}

func (p *recordingPublisher) Publish(topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func (p *recordingPublisher) Last() *ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.payloads) == 0 {
		return nil
	}
	return p.payloads[len(p.payloads)-1].(*ReservationEvent)
}

type testEnv struct {
	db           *gorm.DB
	guestRepo    *repository.GuestRepository
	roomRepo     *repository.RoomRepository
	resRepo      *repository.ReservationRepository
	engine       *AvailabilityEngine
	validator    *InputValidator
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
	publisher    *recordingPublisher
	reservations *ReservationService
	booking      *BookingService
	guests       *GuestService
	rooms        *RoomService
	clock        Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	reg := prometheus.NewRegistry()
	m := metrics.New("hotel_test", reg)

	env := &testEnv{
		db:        db,
		guestRepo: repository.NewGuestRepository(db),
		roomRepo:  repository.NewRoomRepository(db),
		resRepo:   repository.NewReservationRepository(db),
		validator: NewInputValidator(),
		metrics:   m,
		registry:  reg,
		publisher: &recordingPublisher{},
		clock:     fixedClock(testToday),
	}
	env.engine = NewAvailabilityEngine(env.resRepo, env.roomRepo)
	events := NewEventPublisher(env.publisher, "hotel/", m)
	env.reservations = NewReservationService(db, env.guestRepo, env.roomRepo, env.resRepo,
		env.engine, NewLocalRoomLocker(2*time.Second, m), events, env.clock)
	env.booking = NewBookingService(env.guestRepo, env.roomRepo, env.engine, env.reservations,
		env.validator, m, env.clock)
	env.guests = NewGuestService(env.guestRepo, env.resRepo, env.validator, 0.2, env.clock)
	env.rooms = NewRoomService(env.roomRepo, env.resRepo, env.engine, env.validator, env.clock)
	return env
}

func (e *testEnv) guest(t *testing.T, name, guestType string, rate float64) *models.Guest {
	t.Helper()
	g := &models.Guest{
		Name:         name,
		Contact:      fmt.Sprintf("%s@example.com", name),
		GuestType:    guestType,
		DiscountRate: rate,
	}
	require.NoError(t, e.db.Create(g).Error)
	return g
}

func (e *testEnv) room(t *testing.T, roomNo, roomType string, price float64, status string) *models.Room {
	t.Helper()
	r := &models.Room{
		RoomNo:      roomNo,
		Type:        roomType,
		Status:      status,
		BasePrice:   price,
		Description: roomType + " Room",
	}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

var reservationSeq int

func (e *testEnv) reservation(t *testing.T, guestID, roomID int64, checkin, checkout time.Time) *models.Reservation {
	t.Helper()
	reservationSeq++
	r := &models.Reservation{
		ReservationNo: fmt.Sprintf("T%s%04d", checkin.Format("20060102"), reservationSeq),
		GuestID:       guestID,
		RoomID:        roomID,
		CheckinDate:   checkin,
		CheckoutDate:  checkout,
	}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

func (e *testEnv) roomStatus(t *testing.T, roomID int64) string {
	t.Helper()
	r, err := e.roomRepo.GetByID(context.Background(), roomID)
	require.NoError(t, err)
	return r.Status
}

func (e *testEnv) countReservations(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Reservation{}).Count(&n).Error)
	return n
}

// counterValue 读取计数器指标值，labels 需全部匹配
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
