package hotel

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

// lifecycleAction 触发房间状态变化的预订操作
type lifecycleAction string

const (
	actionCreate     lifecycleAction = "create"
	actionCheckIn    lifecycleAction = "check_in"
	actionCheckOut   lifecycleAction = "check_out"
	actionDelete     lifecycleAction = "delete"
	actionUpdateFrom lifecycleAction = "update_old_room"
	actionUpdateTo   lifecycleAction = "update_new_room"
)

// statusRecompute 根据剩余预订重新计算房间状态
const statusRecompute = ""

// roomStatusTransitions 预订操作对应的房间状态
var roomStatusTransitions = map[lifecycleAction]string{
	actionCreate:     models.RoomStatusOccupied,
	actionCheckIn:    models.RoomStatusOccupied,
	actionCheckOut:   models.RoomStatusAvailable,
	actionDelete:     statusRecompute,
	actionUpdateFrom: statusRecompute,
	actionUpdateTo:   models.RoomStatusOccupied,
}

// ReservationInput 预订写入参数（日期已解析）
type ReservationInput struct {
	GuestID  int64
	RoomID   int64
	Checkin  time.Time
	Checkout time.Time
}

// ReservationService 预订生命周期管理
type ReservationService struct {
	db              *gorm.DB
	guestRepo       *repository.GuestRepository
	roomRepo        *repository.RoomRepository
	reservationRepo *repository.ReservationRepository
	engine          *AvailabilityEngine
	locker          RoomLocker
	events          *EventPublisher
	clock           Clock
}

// NewReservationService 创建预订生命周期管理服务
func NewReservationService(
	db *gorm.DB,
	guestRepo *repository.GuestRepository,
	roomRepo *repository.RoomRepository,
	reservationRepo *repository.ReservationRepository,
	engine *AvailabilityEngine,
	locker RoomLocker,
	events *EventPublisher,
	clock Clock,
) *ReservationService {
	return &ReservationService{
		db:              db,
		guestRepo:       guestRepo,
		roomRepo:        roomRepo,
		reservationRepo: reservationRepo,
		engine:          engine,
		locker:          locker,
		events:          events,
		clock:           clock,
	}
}

// Create 创建预订并将房间置为已占用
func (s *ReservationService) Create(ctx context.Context, in *ReservationInput) (reservation *models.Reservation, err error) {
	ctx, span := tracing.Start(ctx, "reservation.create",
		tracing.WithOperation(string(actionCreate)),
		tracing.WithGuestID(in.GuestID),
		tracing.WithRoomID(in.RoomID),
	)
	defer func() { tracing.End(span, err) }()

	stay, err := NewStayInterval(in.Checkin, in.Checkout)
	if err != nil {
		return nil, err
	}
	if err = s.ensureGuest(ctx, in.GuestID); err != nil {
		return nil, err
	}
	if _, err = s.getRoom(ctx, in.RoomID); err != nil {
		return nil, err
	}

	unlock, err := lockRooms(ctx, s.locker, in.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var roomStatus string
	reservation = &models.Reservation{
		ReservationNo: utils.GenerateReservationNo(s.clock.Now()),
		GuestID:       in.GuestID,
		RoomID:        in.RoomID,
		CheckinDate:   stay.Checkin,
		CheckoutDate:  stay.Checkout,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockRoomRow(ctx, tx, in.RoomID); err != nil {
			return err
		}
		if err := s.ensureNoConflict(ctx, tx, in.RoomID, stay, nil); err != nil {
			return err
		}
		if err := s.reservationRepo.WithTx(tx).Create(ctx, reservation); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		status, err := s.applyTransition(ctx, tx, actionCreate, in.RoomID)
		roomStatus = status
		return err
	})
	if err != nil {
		s.logRejected("create", in.RoomID, err)
		return nil, storageError(err)
	}

	created, err := s.Get(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("预订已创建",
		logger.Module("reservation"),
		logger.Action(string(actionCreate)),
		logger.ReservationID(created.ID),
		logger.ReservationNo(created.ReservationNo),
		logger.GuestID(created.GuestID),
		logger.RoomID(created.RoomID),
		logger.StayDates(created.CheckinDate, created.CheckoutDate),
	)
	s.events.Publish(ctx, EventCreated, created, roomNoOf(created), roomStatus)
	return created, nil
}

// Update 修改预订，在新房间和区间上重新校验可用性
func (s *ReservationService) Update(ctx context.Context, id int64, in *ReservationInput) (reservation *models.Reservation, err error) {
	ctx, span := tracing.Start(ctx, "reservation.update",
		tracing.WithOperation("update"),
		tracing.WithReservationID(id),
		tracing.WithRoomID(in.RoomID),
	)
	defer func() { tracing.End(span, err) }()

	stay, err := NewStayInterval(in.Checkin, in.Checkout)
	if err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.ensureGuest(ctx, in.GuestID); err != nil {
		return nil, err
	}
	if _, err = s.getRoom(ctx, in.RoomID); err != nil {
		return nil, err
	}

	oldRoomID := existing.RoomID
	unlock, err := lockRooms(ctx, s.locker, oldRoomID, in.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var roomStatus string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, roomID := range sortedUnique(oldRoomID, in.RoomID) {
			if _, err := s.lockRoomRow(ctx, tx, roomID); err != nil {
				return err
			}
		}
		if err := s.ensureNoConflict(ctx, tx, in.RoomID, stay, &id); err != nil {
			return err
		}

		existing.Guest = nil
		existing.Room = nil
		existing.GuestID = in.GuestID
		existing.RoomID = in.RoomID
		existing.CheckinDate = stay.Checkin
		existing.CheckoutDate = stay.Checkout
		if err := s.reservationRepo.WithTx(tx).Update(ctx, existing); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		if oldRoomID != in.RoomID {
			if _, err := s.applyTransition(ctx, tx, actionUpdateFrom, oldRoomID); err != nil {
				return err
			}
		}
		status, err := s.applyTransition(ctx, tx, actionUpdateTo, in.RoomID)
		roomStatus = status
		return err
	})
	if err != nil {
		s.logRejected("update", in.RoomID, err)
		return nil, storageError(err)
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info("预订已修改",
		logger.Module("reservation"),
		logger.Action("update"),
		logger.ReservationID(id),
		logger.RoomID(updated.RoomID),
		logger.Int64("old_room_id", oldRoomID),
		logger.StayDates(updated.CheckinDate, updated.CheckoutDate),
	)
	s.events.Publish(ctx, EventUpdated, updated, roomNoOf(updated), roomStatus)
	return updated, nil
}

// Delete 删除预订并重新计算房间状态
func (s *ReservationService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.Start(ctx, "reservation.delete",
		tracing.WithOperation(string(actionDelete)),
		tracing.WithReservationID(id),
	)
	defer func() { tracing.End(span, err) }()

	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	unlock, err := lockRooms(ctx, s.locker, existing.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	var roomStatus string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockRoomRow(ctx, tx, existing.RoomID); err != nil {
			return err
		}
		if err := s.reservationRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		status, err := s.applyTransition(ctx, tx, actionDelete, existing.RoomID)
		roomStatus = status
		return err
	})
	if err != nil {
		return storageError(err)
	}

	logger.Info("预订已删除",
		logger.Module("reservation"),
		logger.Action(string(actionDelete)),
		logger.ReservationID(id),
		logger.RoomID(existing.RoomID),
		logger.String("room_status", roomStatus),
	)
	s.events.Publish(ctx, EventDeleted, existing, roomNoOf(existing), roomStatus)
	return nil
}

// CheckIn 前台办理入住，房间置为已占用
func (s *ReservationService) CheckIn(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.frontDesk(ctx, id, actionCheckIn, EventCheckedIn)
}

// CheckOut 前台办理退房，房间置为空闲
func (s *ReservationService) CheckOut(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.frontDesk(ctx, id, actionCheckOut, EventCheckedOut)
}

// frontDesk 手动覆盖房间状态，不经过可用性判断
func (s *ReservationService) frontDesk(ctx context.Context, id int64, action lifecycleAction, eventType string) (reservation *models.Reservation, err error) {
	ctx, span := tracing.Start(ctx, "reservation."+string(action),
		tracing.WithOperation(string(action)),
		tracing.WithReservationID(id),
	)
	defer func() { tracing.End(span, err) }()

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock, err := lockRooms(ctx, s.locker, existing.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var roomStatus string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockRoomRow(ctx, tx, existing.RoomID); err != nil {
			return err
		}
		status, err := s.applyTransition(ctx, tx, action, existing.RoomID)
		roomStatus = status
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	if existing.Room != nil {
		existing.Room.Status = roomStatus
	}
	logger.Info("前台更新房间状态",
		logger.Module("reservation"),
		logger.Action(string(action)),
		logger.ReservationID(id),
		logger.RoomID(existing.RoomID),
		logger.String("room_status", roomStatus),
	)
	s.events.Publish(ctx, eventType, existing, roomNoOf(existing), roomStatus)
	return existing, nil
}

// applyTransition 按状态表更新房间状态，返回最终状态
func (s *ReservationService) applyTransition(ctx context.Context, tx *gorm.DB, action lifecycleAction, roomID int64) (string, error) {
	status, ok := roomStatusTransitions[action]
	if !ok {
		return "", errors.ErrInternalError.WithMessagef("未定义的预订操作: %s", action)
	}

	if status == statusRecompute {
		_, err := s.reservationRepo.WithTx(tx).FindInHouseByRoom(ctx, roomID, s.clock.Today(), nil)
		switch {
		case err == nil:
			status = models.RoomStatusOccupied
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			status = models.RoomStatusAvailable
		default:
			return "", errors.ErrDatabaseError.WithError(err)
		}
	}

	if err := s.roomRepo.WithTx(tx).UpdateStatus(ctx, roomID, status); err != nil {
		return "", errors.ErrDatabaseError.WithError(err)
	}
	return status, nil
}

// lockRoomRow 事务内锁定房间行
func (s *ReservationService) lockRoomRow(ctx context.Context, tx *gorm.DB, roomID int64) (*models.Room, error) {
	room, err := s.roomRepo.WithTx(tx).GetByIDForUpdate(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// ensureNoConflict 事务内复查可用性
func (s *ReservationService) ensureNoConflict(ctx context.Context, tx *gorm.DB, roomID int64, stay StayInterval, excludeID *int64) error {
	conflicts, err := s.engine.WithTx(tx).Conflicts(ctx, roomID, stay, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return conflictError(conflicts[0])
	}
	return nil
}

// conflictError 冲突提示中带上已有预订的日期
func conflictError(r *models.Reservation) *errors.AppError {
	return errors.ErrReservationConflict.WithMessagef("房间在 %s 至 %s 已被预订",
		utils.FormatDate(r.CheckinDate), utils.FormatDate(r.CheckoutDate))
}

func (s *ReservationService) ensureGuest(ctx context.Context, guestID int64) error {
	if _, err := s.guestRepo.GetByID(ctx, guestID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrGuestNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (s *ReservationService) getRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

func (s *ReservationService) logRejected(action string, roomID int64, err error) {
	if !errors.IsBusinessError(err) {
		return
	}
	logger.Warn("预订操作被拒绝",
		logger.Module("reservation"),
		logger.Action(action),
		logger.RoomID(roomID),
		logger.String("reason", errors.GetAppError(err).Message),
	)
}

// Get 获取预订（包含客人和房间）
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return reservation, nil
}

// GetByNo 根据预订号获取预订
func (s *ReservationService) GetByNo(ctx context.Context, reservationNo string) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByNo(ctx, reservationNo)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return reservation, nil
}

// ReservationQuery 预订列表查询参数
type ReservationQuery struct {
	utils.Pagination
	GuestID   *int64
	RoomID    *int64
	Period    string // active | future | past
	GuestName string
}

// List 分页查询预订
func (s *ReservationService) List(ctx context.Context, q *ReservationQuery) ([]*models.Reservation, int64, error) {
	q.Normalize()
	filter := &repository.ReservationFilter{
		GuestID:   q.GuestID,
		RoomID:    q.RoomID,
		Period:    q.Period,
		Today:     s.clock.Today(),
		GuestName: q.GuestName,
	}
	list, total, err := s.reservationRepo.List(ctx, q.GetOffset(), q.GetLimit(), filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// ListByGuest 客人的全部预订
func (s *ReservationService) ListByGuest(ctx context.Context, guestID int64) ([]*models.Reservation, error) {
	list, err := s.reservationRepo.ListByGuest(ctx, guestID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// ListByRoom 房间的全部预订
func (s *ReservationService) ListByRoom(ctx context.Context, roomID int64) ([]*models.Reservation, error) {
	list, err := s.reservationRepo.ListByRoom(ctx, roomID, nil)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// ListInRange 与 [from, to) 有交集的预订
func (s *ReservationService) ListInRange(ctx context.Context, from, to time.Time) ([]*models.Reservation, error) {
	if _, err := NewStayInterval(from, to); err != nil {
		return nil, err
	}
	list, err := s.reservationRepo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// ReservationStats 预订统计
type ReservationStats struct {
	Active   int64 `json:"active"`
	Upcoming int64 `json:"upcoming"`
}

// Stats 在住与未来预订数
func (s *ReservationService) Stats(ctx context.Context) (*ReservationStats, error) {
	today := s.clock.Today()
	active, err := s.reservationRepo.CountActive(ctx, today)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	upcoming, err := s.reservationRepo.CountUpcoming(ctx, today)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &ReservationStats{Active: active, Upcoming: upcoming}, nil
}

// storageError 非业务错误统一包装为数据库错误
func storageError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.ErrDatabaseError.WithError(err)
}

func roomNoOf(r *models.Reservation) string {
	if r.Room != nil {
		return r.Room.RoomNo
	}
	return ""
}
