package hotel

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

// 预订结果指标
const (
	outcomeCreated  = "created"
	outcomeUpdated  = "updated"
	outcomeRejected = "rejected"
	outcomeConflict = "conflict"
	outcomeFailed   = "failed"
)

// BookingRequest 预订请求，日期格式 YYYY-MM-DD
type BookingRequest struct {
	GuestID      int64  `json:"guest_id"`
	RoomID       int64  `json:"room_id"`
	CheckinDate  string `json:"checkin_date" validate:"omitempty,date"`
	CheckoutDate string `json:"checkout_date" validate:"omitempty,date"`
}

// QuoteRequest 报价请求，Amenities 非空时按指定附加服务报价
type QuoteRequest struct {
	BookingRequest
	Amenities []string `json:"amenities" validate:"omitempty,dive,amenity"`
}

// ValidationResult 预订校验结果
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Code   int    `json:"code,omitempty"`

	err *errors.AppError
}

// Err 校验失败时对应的业务错误
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return r.err
}

func valid() *ValidationResult {
	return &ValidationResult{Valid: true}
}

func invalid(err *errors.AppError) *ValidationResult {
	return &ValidationResult{Valid: false, Reason: err.Message, Code: err.Code, err: err}
}

// bookingPlan 校验通过后的预订参数
type bookingPlan struct {
	guest *models.Guest
	room  *models.Room
	stay  StayInterval
}

// BookingService 预订入口，先校验再交给生命周期管理
type BookingService struct {
	guestRepo    *repository.GuestRepository
	roomRepo     *repository.RoomRepository
	engine       *AvailabilityEngine
	reservations *ReservationService
	validator    *InputValidator
	metrics      *metrics.Metrics
	clock        Clock
}

// NewBookingService 创建预订服务
func NewBookingService(
	guestRepo *repository.GuestRepository,
	roomRepo *repository.RoomRepository,
	engine *AvailabilityEngine,
	reservations *ReservationService,
	validator *InputValidator,
	m *metrics.Metrics,
	clock Clock,
) *BookingService {
	return &BookingService{
		guestRepo:    guestRepo,
		roomRepo:     roomRepo,
		engine:       engine,
		reservations: reservations,
		validator:    validator,
		metrics:      m,
		clock:        clock,
	}
}

// ValidateBooking 校验新预订：客人、房间、日期、可用性
// 业务规则失败以结果返回，存储失败以 error 返回
func (s *BookingService) ValidateBooking(ctx context.Context, req *BookingRequest) (*ValidationResult, error) {
	result, _, err := s.validate(ctx, req, nil)
	return result, err
}

// validate 按顺序校验，existing 非空时为修改预订
func (s *BookingService) validate(ctx context.Context, req *BookingRequest, existing *models.Reservation) (*ValidationResult, *bookingPlan, error) {
	switch {
	case req.GuestID <= 0:
		return s.reject(errors.ErrGuestRequired), nil, nil
	case req.RoomID <= 0:
		return s.reject(errors.ErrRoomRequired), nil, nil
	case strings.TrimSpace(req.CheckinDate) == "":
		return s.reject(errors.ErrCheckinRequired), nil, nil
	case strings.TrimSpace(req.CheckoutDate) == "":
		return s.reject(errors.ErrCheckoutRequired), nil, nil
	}
	if err := s.validator.Validate(req); err != nil {
		return s.reject(errors.GetAppError(err)), nil, nil
	}

	guest, err := s.guestRepo.GetByID(ctx, req.GuestID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(errors.ErrGuestNotFound), nil, nil
		}
		return nil, nil, errors.ErrDatabaseError.WithError(err)
	}
	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return s.reject(errors.ErrRoomNotFound), nil, nil
		}
		return nil, nil, errors.ErrDatabaseError.WithError(err)
	}

	checkin, _ := utils.ParseDate(req.CheckinDate)
	checkout, _ := utils.ParseDate(req.CheckoutDate)
	stay, err := NewStayInterval(checkin, checkout)
	if err != nil {
		return s.reject(errors.ErrStayDatesInvalid), nil, nil
	}

	// 修改预订时入住日期未变则不检查是否早于今天
	checkinChanged := existing == nil || !existing.CheckinDate.Equal(stay.Checkin)
	if checkinChanged && stay.Checkin.Before(s.clock.Today()) {
		return s.reject(errors.ErrCheckinInPast), nil, nil
	}

	var excludeID *int64
	if existing != nil {
		excludeID = &existing.ID
	}
	conflicts, err := s.engine.Conflicts(ctx, room.ID, stay, excludeID)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return s.reject(conflictError(conflicts[0])), nil, nil
	}

	return valid(), &bookingPlan{guest: guest, room: room, stay: stay}, nil
}

func (s *BookingService) reject(err *errors.AppError) *ValidationResult {
	s.metrics.RecordValidationFailure(strconv.Itoa(err.Code))
	return invalid(err)
}

// Book 校验并创建预订
func (s *BookingService) Book(ctx context.Context, req *BookingRequest) (*models.Reservation, error) {
	result, plan, err := s.validate(ctx, req, nil)
	if err != nil {
		s.metrics.RecordBooking(outcomeFailed)
		return nil, err
	}
	if !result.Valid {
		s.metrics.RecordBooking(outcomeOf(result.Err()))
		return nil, result.Err()
	}

	reservation, err := s.reservations.Create(ctx, &ReservationInput{
		GuestID:  plan.guest.ID,
		RoomID:   plan.room.ID,
		Checkin:  plan.stay.Checkin,
		Checkout: plan.stay.Checkout,
	})
	if err != nil {
		s.metrics.RecordBooking(outcomeOf(err))
		return nil, err
	}
	s.metrics.RecordBooking(outcomeCreated)
	return reservation, nil
}

// Rebook 校验并修改预订
func (s *BookingService) Rebook(ctx context.Context, id int64, req *BookingRequest) (*models.Reservation, error) {
	existing, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, plan, err := s.validate(ctx, req, existing)
	if err != nil {
		s.metrics.RecordBooking(outcomeFailed)
		return nil, err
	}
	if !result.Valid {
		s.metrics.RecordBooking(outcomeOf(result.Err()))
		return nil, result.Err()
	}

	reservation, err := s.reservations.Update(ctx, id, &ReservationInput{
		GuestID:  plan.guest.ID,
		RoomID:   plan.room.ID,
		Checkin:  plan.stay.Checkin,
		Checkout: plan.stay.Checkout,
	})
	if err != nil {
		s.metrics.RecordBooking(outcomeOf(err))
		return nil, err
	}
	s.metrics.RecordBooking(outcomeUpdated)
	return reservation, nil
}

// Cancel 取消预订
func (s *BookingService) Cancel(ctx context.Context, id int64) error {
	return s.reservations.Delete(ctx, id)
}

// CheckIn 办理入住
func (s *BookingService) CheckIn(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.reservations.CheckIn(ctx, id)
}

// CheckOut 办理退房
func (s *BookingService) CheckOut(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.reservations.CheckOut(ctx, id)
}

// Quote 计算入住报价，不检查可用性
func (s *BookingService) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	switch {
	case req.GuestID <= 0:
		return nil, errors.ErrGuestRequired
	case req.RoomID <= 0:
		return nil, errors.ErrRoomRequired
	case strings.TrimSpace(req.CheckinDate) == "":
		return nil, errors.ErrCheckinRequired
	case strings.TrimSpace(req.CheckoutDate) == "":
		return nil, errors.ErrCheckoutRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	guest, err := s.guestRepo.GetByID(ctx, req.GuestID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGuestNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	checkin, _ := utils.ParseDate(req.CheckinDate)
	checkout, _ := utils.ParseDate(req.CheckoutDate)
	stay, err := NewStayInterval(checkin, checkout)
	if err != nil {
		return nil, err
	}

	offering := OfferingFromRoom(room)
	if len(req.Amenities) > 0 {
		amenities, err := ParseAmenities(req.Amenities)
		if err != nil {
			return nil, err
		}
		base, err := BaseRoomOf(offering)
		if err != nil {
			return nil, err
		}
		offering = NewOffering(base.Room(), amenities...)
	}

	quote := NewQuote(VariantOf(guest), offering, stay)
	quote.GuestID = guest.ID
	return quote, nil
}

// Today 业务日期
func (s *BookingService) Today() time.Time {
	return s.clock.Today()
}

func outcomeOf(err error) string {
	switch errors.KindOf(err) {
	case errors.KindConflict:
		return outcomeConflict
	case errors.KindInvalidArgument, errors.KindNotFound, errors.KindPreconditionFailed:
		return outcomeRejected
	default:
		return outcomeFailed
	}
}
