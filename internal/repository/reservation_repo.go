package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// ReservationRepository 预订仓储
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预订仓储
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// WithTx 绑定到事务
func (r *ReservationRepository) WithTx(tx *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

// Create 创建预订
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error
}

// GetByID 根据 ID 获取预订（包含客人和房间）
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetByNo 根据预订号获取预订
func (r *ReservationRepository) GetByNo(ctx context.Context, reservationNo string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		Where("reservation_no = ?", reservationNo).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update 更新预订，不写关联
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(reservation).Error
}

// Delete 删除预订
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error
}

// ListByRoom 获取房间的全部预订，excludeID 非空时排除该预订
func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID int64, excludeID *int64) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	query := r.db.WithContext(ctx).Where("room_id = ?", roomID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Order("checkin_date ASC, id ASC").Find(&reservations).Error
	return reservations, err
}

// ListByGuest 获取客人的全部预订
func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID int64) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("guest_id = ?", guestID).
		Order("checkin_date DESC, id DESC").
		Find(&reservations).Error
	return reservations, err
}

// ListInRange 获取与 [from, to) 有交集的预订
func (r *ReservationRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		Where("checkin_date < ? AND checkout_date > ?", to, from).
		Order("checkin_date ASC, id ASC").
		Find(&reservations).Error
	return reservations, err
}

// 预订时期
const (
	PeriodActive = "active" // 在住：入住日 <= 今天 < 退房日
	PeriodFuture = "future" // 未来：入住日 > 今天
	PeriodPast   = "past"   // 已结束：退房日 <= 今天
)

// ReservationFilter 预订查询过滤条件
type ReservationFilter struct {
	GuestID   *int64
	RoomID    *int64
	Period    string
	Today     time.Time // Period 的参照日期
	GuestName string
}

// List 获取预订列表
func (r *ReservationRepository) List(ctx context.Context, offset, limit int, filter *ReservationFilter) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if filter != nil {
		if filter.GuestID != nil {
			query = query.Where("reservations.guest_id = ?", *filter.GuestID)
		}
		if filter.RoomID != nil {
			query = query.Where("reservations.room_id = ?", *filter.RoomID)
		}
		query = applyPeriod(query, filter.Period, filter.Today)
		if filter.GuestName != "" {
			guestIDs := r.db.Model(&models.Guest{}).
				Select("id").
				Where("LOWER(name) LIKE ?", likePattern(filter.GuestName))
			query = query.Where("reservations.guest_id IN (?)", guestIDs)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Guest").
		Preload("Room").
		Order("reservations.checkin_date DESC, reservations.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func applyPeriod(query *gorm.DB, period string, today time.Time) *gorm.DB {
	switch period {
	case PeriodActive:
		return query.Where("reservations.checkin_date <= ? AND reservations.checkout_date > ?", today, today)
	case PeriodFuture:
		return query.Where("reservations.checkin_date > ?", today)
	case PeriodPast:
		return query.Where("reservations.checkout_date <= ?", today)
	default:
		return query
	}
}

// HasActiveOrFutureForGuest 客人是否存在退房日不早于今天的预订
func (r *ReservationRepository) HasActiveOrFutureForGuest(ctx context.Context, guestID int64, today time.Time) (bool, error) {
	return r.exists(ctx, "guest_id = ? AND checkout_date >= ?", guestID, today)
}

// HasActiveOrFutureForRoom 房间是否存在退房日不早于今天的预订
func (r *ReservationRepository) HasActiveOrFutureForRoom(ctx context.Context, roomID int64, today time.Time) (bool, error) {
	return r.exists(ctx, "room_id = ? AND checkout_date >= ?", roomID, today)
}

func (r *ReservationRepository) exists(ctx context.Context, cond string, args ...interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).Where(cond, args...).Count(&count).Error
	return count > 0, err
}

// FindInHouseByRoom 查找房间今天在住的预订，excludeID 非空时排除该预订
func (r *ReservationRepository) FindInHouseByRoom(ctx context.Context, roomID int64, today time.Time, excludeID *int64) (*models.Reservation, error) {
	var reservation models.Reservation
	query := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("checkin_date <= ? AND checkout_date > ?", today, today)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Order("checkin_date ASC").First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CountActive 统计今天在住的预订数
func (r *ReservationRepository) CountActive(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := applyPeriod(r.db.WithContext(ctx).Model(&models.Reservation{}), PeriodActive, today).Count(&count).Error
	return count, err
}

// CountUpcoming 统计入住日在今天之后的预订数
func (r *ReservationRepository) CountUpcoming(ctx context.Context, today time.Time) (int64, error) {
	var count int64
	err := applyPeriod(r.db.WithContext(ctx).Model(&models.Reservation{}), PeriodFuture, today).Count(&count).Error
	return count, err
}
