package hotel

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

// RoomRequest 创建或修改房间请求
type RoomRequest struct {
	RoomNo      string   `json:"room_no" validate:"required,max=20"`
	Type        string   `json:"type" validate:"required,max=50"`
	Status      string   `json:"status" validate:"omitempty,room_status"`
	BasePrice   float64  `json:"base_price" validate:"gt=0"`
	Description string   `json:"description" validate:"max=500"`
	Amenities   []string `json:"amenities" validate:"omitempty,dive,amenity"`
}

// RoomInfo 房间展示信息
type RoomInfo struct {
	*models.Room
	Price           float64  `json:"price"`
	BaseDescription string   `json:"base_description"`
	AmenityTags     []string `json:"amenity_tags"`
}

// NewRoomInfo 计算房间的总价和附加服务
func NewRoomInfo(room *models.Room) *RoomInfo {
	offering := OfferingFromRoom(room)
	info := &RoomInfo{
		Room:        room,
		Price:       offering.Price(),
		AmenityTags: make([]string, 0, 2),
	}
	for _, a := range AmenitiesOf(offering) {
		info.AmenityTags = append(info.AmenityTags, string(a))
	}
	if base, err := BaseRoomOf(offering); err == nil {
		info.BaseDescription = base.Description()
	}
	return info
}

// RoomService 房间管理服务
type RoomService struct {
	roomRepo        *repository.RoomRepository
	reservationRepo *repository.ReservationRepository
	engine          *AvailabilityEngine
	validator       *InputValidator
	clock           Clock
}

// NewRoomService 创建房间管理服务
func NewRoomService(
	roomRepo *repository.RoomRepository,
	reservationRepo *repository.ReservationRepository,
	engine *AvailabilityEngine,
	validator *InputValidator,
	clock Clock,
) *RoomService {
	return &RoomService{
		roomRepo:        roomRepo,
		reservationRepo: reservationRepo,
		engine:          engine,
		validator:       validator,
		clock:           clock,
	}
}

// compose 按请求组合房间描述和附加服务
func (s *RoomService) compose(room *models.Room, req *RoomRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	amenities, err := ParseAmenities(req.Amenities)
	if err != nil {
		return err
	}

	// 更新时未指定状态则保留原状态，由预订流转维护
	status := room.Status
	if room.ID == 0 {
		status = models.RoomStatusAvailable
	}
	if req.Status != "" {
		status, _ = models.NormalizeRoomStatus(req.Status)
	}

	room.RoomNo = strings.TrimSpace(req.RoomNo)
	room.Type = strings.TrimSpace(req.Type)
	room.Status = status
	room.BasePrice = utils.RoundMoney(req.BasePrice)
	room.Description = BaseDescription(room.Type, req.Description)

	offering := NewOffering(room, amenities...)
	room.Description = offering.Description()
	room.Amenities = FormatAmenities(amenities)
	return nil
}

// Create 创建房间，房间号不可重复
func (s *RoomService) Create(ctx context.Context, req *RoomRequest) (*RoomInfo, error) {
	room := &models.Room{}
	if err := s.compose(room, req); err != nil {
		return nil, err
	}

	exists, err := s.roomRepo.ExistsByRoomNo(ctx, room.RoomNo, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrRoomNumberExists
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("房间已创建",
		logger.Module("room"),
		logger.Action("create"),
		logger.RoomID(room.ID),
		logger.String("room_no", room.RoomNo),
	)
	return NewRoomInfo(room), nil
}

// Update 修改房间
func (s *RoomService) Update(ctx context.Context, id int64, req *RoomRequest) (*RoomInfo, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.compose(room, req); err != nil {
		return nil, err
	}

	exists, err := s.roomRepo.ExistsByRoomNo(ctx, room.RoomNo, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrRoomNumberExists
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return NewRoomInfo(room), nil
}

// Delete 删除房间，存在未结束预订时拒绝
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if _, err := s.getRoom(ctx, id); err != nil {
		return err
	}

	blocked, err := s.reservationRepo.HasActiveOrFutureForRoom(ctx, id, s.clock.Today())
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if blocked {
		logger.Warn("房间存在未结束预订，拒绝删除",
			logger.Module("room"),
			logger.RoomID(id),
		)
		return errors.ErrRoomHasReservations
	}

	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// Get 获取房间
func (s *RoomService) Get(ctx context.Context, id int64) (*RoomInfo, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewRoomInfo(room), nil
}

func (s *RoomService) getRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// RoomQuery 房间列表查询参数
type RoomQuery struct {
	utils.Pagination
	Type     string
	Status   string
	MinPrice *float64
	MaxPrice *float64
	Keyword  string
}

// List 分页查询房间
func (s *RoomService) List(ctx context.Context, q *RoomQuery) ([]*RoomInfo, int64, error) {
	q.Normalize()
	if q.Status != "" {
		if _, ok := models.NormalizeRoomStatus(q.Status); !ok {
			return nil, 0, errors.ErrRoomStatusInvalid
		}
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, 0, errors.ErrInvalidParams.WithMessage("最低价格不能高于最高价格")
	}

	rooms, total, err := s.roomRepo.List(ctx, q.GetOffset(), q.GetLimit(), &repository.RoomFilter{
		Type:     q.Type,
		Status:   q.Status,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Keyword:  q.Keyword,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return roomInfos(rooms), total, nil
}

// ListTypes 全部房型
func (s *RoomService) ListTypes(ctx context.Context) ([]string, error) {
	types, err := s.roomRepo.ListTypes(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return types, nil
}

// AvailableRooms 区间内可预订的房间
func (s *RoomService) AvailableRooms(ctx context.Context, checkin, checkout time.Time) ([]*RoomInfo, error) {
	stay, err := NewStayInterval(checkin, checkout)
	if err != nil {
		return nil, err
	}
	rooms, err := s.engine.AvailableRooms(ctx, stay)
	if err != nil {
		return nil, err
	}
	return roomInfos(rooms), nil
}

// ConflictInfo 冲突预订摘要
type ConflictInfo struct {
	ReservationID int64  `json:"reservation_id"`
	ReservationNo string `json:"reservation_no"`
	CheckinDate   string `json:"checkin_date"`
	CheckoutDate  string `json:"checkout_date"`
}

// AvailabilityResult 房间可用性查询结果
type AvailabilityResult struct {
	RoomID    int64           `json:"room_id"`
	Available bool            `json:"available"`
	Conflicts []*ConflictInfo `json:"conflicts"`
}

// CheckAvailability 查询房间在区间内是否可订，excludeID 用于修改预订
func (s *RoomService) CheckAvailability(ctx context.Context, roomID int64, checkin, checkout time.Time, excludeID *int64) (*AvailabilityResult, error) {
	stay, err := NewStayInterval(checkin, checkout)
	if err != nil {
		return nil, err
	}
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}

	conflicts, err := s.engine.Conflicts(ctx, roomID, stay, excludeID)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		RoomID:    roomID,
		Available: len(conflicts) == 0,
		Conflicts: make([]*ConflictInfo, 0, len(conflicts)),
	}
	for _, r := range conflicts {
		result.Conflicts = append(result.Conflicts, &ConflictInfo{
			ReservationID: r.ID,
			ReservationNo: r.ReservationNo,
			CheckinDate:   utils.FormatDate(r.CheckinDate),
			CheckoutDate:  utils.FormatDate(r.CheckoutDate),
		})
	}
	return result, nil
}

// RoomStats 房间统计
type RoomStats struct {
	Total              int64              `json:"total"`
	ByStatus           map[string]int64   `json:"by_status"`
	AveragePriceByType map[string]float64 `json:"average_price_by_type"`
	Cheapest           *RoomInfo          `json:"cheapest_available,omitempty"`
	MostExpensive      *RoomInfo          `json:"most_expensive_available,omitempty"`
}

// Stats 房间统计
func (s *RoomService) Stats(ctx context.Context) (*RoomStats, error) {
	byStatus, err := s.roomRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	avg, err := s.roomRepo.AveragePriceByType(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	stats := &RoomStats{ByStatus: byStatus, AveragePriceByType: make(map[string]float64, len(avg))}
	for _, n := range byStatus {
		stats.Total += n
	}
	for roomType, price := range avg {
		stats.AveragePriceByType[roomType] = utils.RoundMoney(price)
	}

	if stats.Cheapest, err = s.availableBy(ctx, s.roomRepo.CheapestAvailable); err != nil {
		return nil, err
	}
	if stats.MostExpensive, err = s.availableBy(ctx, s.roomRepo.MostExpensiveAvailable); err != nil {
		return nil, err
	}
	return stats, nil
}

// CountByStatus 各状态房间数，供统计任务使用
func (s *RoomService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.roomRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return counts, nil
}

func (s *RoomService) availableBy(ctx context.Context, find func(context.Context) (*models.Room, error)) (*RoomInfo, error) {
	room, err := find(ctx)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return NewRoomInfo(room), nil
}

func roomInfos(rooms []*models.Room) []*RoomInfo {
	infos := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, NewRoomInfo(room))
	}
	return infos
}
