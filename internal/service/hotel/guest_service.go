package hotel

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
)

// GuestRequest 创建或修改客人请求
type GuestRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Contact      string   `json:"contact" validate:"required,max=100"`
	GuestType    string   `json:"guest_type" validate:"required,guest_type"`
	DiscountRate *float64 `json:"discount_rate" validate:"omitempty,gte=0,lte=1"`
}

// GuestService 客人管理服务
type GuestService struct {
	guestRepo       *repository.GuestRepository
	reservationRepo *repository.ReservationRepository
	validator       *InputValidator
	vipDefaultRate  float64
	clock           Clock
}

// NewGuestService 创建客人管理服务
func NewGuestService(
	guestRepo *repository.GuestRepository,
	reservationRepo *repository.ReservationRepository,
	validator *InputValidator,
	vipDefaultRate float64,
	clock Clock,
) *GuestService {
	return &GuestService{
		guestRepo:       guestRepo,
		reservationRepo: reservationRepo,
		validator:       validator,
		vipDefaultRate:  vipDefaultRate,
		clock:           clock,
	}
}

// variantOf 由请求构造计价类型，VIP 未给折扣率时使用 fallbackRate
func (s *GuestService) variantOf(req *GuestRequest, fallbackRate float64) (PricingVariant, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	rate := fallbackRate
	if req.DiscountRate != nil {
		rate = *req.DiscountRate
	}
	return NewGuest(req.GuestType, strings.TrimSpace(req.Name), strings.TrimSpace(req.Contact), rate)
}

// Create 登记客人，联系方式不可重复
func (s *GuestService) Create(ctx context.Context, req *GuestRequest) (*models.Guest, error) {
	variant, err := s.variantOf(req, s.vipDefaultRate)
	if err != nil {
		return nil, err
	}

	exists, err := s.guestRepo.ExistsByContact(ctx, variant.Contact(), 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrContactExists
	}

	guest := &models.Guest{
		Name:         variant.Name(),
		Contact:      variant.Contact(),
		GuestType:    variant.Type(),
		DiscountRate: variant.DiscountRate(),
	}
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("客人已登记",
		logger.Module("guest"),
		logger.Action("create"),
		logger.GuestID(guest.ID),
		logger.String("guest_type", guest.GuestType),
	)
	return guest, nil
}

// Update 修改客人信息
func (s *GuestService) Update(ctx context.Context, id int64, req *GuestRequest) (*models.Guest, error) {
	guest, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 已是 VIP 且未给折扣率时沿用原折扣率
	fallback := s.vipDefaultRate
	if guest.GuestType == models.GuestTypeVIP {
		fallback = guest.DiscountRate
	}
	variant, err := s.variantOf(req, fallback)
	if err != nil {
		return nil, err
	}

	exists, err := s.guestRepo.ExistsByContact(ctx, variant.Contact(), id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrContactExists
	}

	guest.Name = variant.Name()
	guest.Contact = variant.Contact()
	guest.GuestType = variant.Type()
	guest.DiscountRate = variant.DiscountRate()
	if err := s.guestRepo.Update(ctx, guest); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return guest, nil
}

// Delete 删除客人，存在未结束预订时拒绝
func (s *GuestService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	blocked, err := s.reservationRepo.HasActiveOrFutureForGuest(ctx, id, s.clock.Today())
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if blocked {
		logger.Warn("客人存在未结束预订，拒绝删除",
			logger.Module("guest"),
			logger.GuestID(id),
		)
		return errors.ErrGuestHasReservations
	}

	if err := s.guestRepo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// Get 获取客人
func (s *GuestService) Get(ctx context.Context, id int64) (*models.Guest, error) {
	guest, err := s.guestRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGuestNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return guest, nil
}

// GuestQuery 客人列表查询参数
type GuestQuery struct {
	utils.Pagination
	GuestType string
	Keyword   string
}

// List 分页查询客人
func (s *GuestService) List(ctx context.Context, q *GuestQuery) ([]*models.Guest, int64, error) {
	q.Normalize()
	if q.GuestType != "" {
		if _, err := ParseGuestType(q.GuestType); err != nil {
			return nil, 0, err
		}
	}
	list, total, err := s.guestRepo.List(ctx, q.GetOffset(), q.GetLimit(), &repository.GuestFilter{
		GuestType: q.GuestType,
		Keyword:   q.Keyword,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// SearchByName 按姓名搜索客人
func (s *GuestService) SearchByName(ctx context.Context, keyword string, limit int) ([]*models.Guest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := s.guestRepo.SearchByName(ctx, keyword, limit)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return list, nil
}

// GuestStats 客人统计
type GuestStats struct {
	Total   int64 `json:"total"`
	Regular int64 `json:"regular"`
	VIP     int64 `json:"vip"`
}

// Stats 按类型统计客人数量
func (s *GuestService) Stats(ctx context.Context) (*GuestStats, error) {
	counts, err := s.guestRepo.CountByType(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	stats := &GuestStats{}
	for guestType, n := range counts {
		stats.Total += n
		if strings.EqualFold(guestType, models.GuestTypeVIP) {
			stats.VIP += n
		} else {
			stats.Regular += n
		}
	}
	return stats, nil
}

// CountByType 各类型客人数，供统计任务使用
func (s *GuestService) CountByType(ctx context.Context) (map[string]int64, error) {
	counts, err := s.guestRepo.CountByType(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return counts, nil
}
