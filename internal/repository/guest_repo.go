// Package repository 提供数据访问层
package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// GuestRepository 客人仓储
type GuestRepository struct {
	db *gorm.DB
}

// NewGuestRepository 创建客人仓储
func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// WithTx 绑定到事务
func (r *GuestRepository) WithTx(tx *gorm.DB) *GuestRepository {
	return &GuestRepository{db: tx}
}

// Create 创建客人
func (r *GuestRepository) Create(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

// GetByID 根据 ID 获取客人
func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	var guest models.Guest
	if err := r.db.WithContext(ctx).First(&guest, id).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// Update 更新客人
func (r *GuestRepository) Update(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Save(guest).Error
}

// Delete 删除客人
func (r *GuestRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Guest{}, id).Error
}

// GuestFilter 客人查询过滤条件
type GuestFilter struct {
	GuestType string
	Keyword   string // 姓名或联系方式
}

// List 获取客人列表
func (r *GuestRepository) List(ctx context.Context, offset, limit int, filter *GuestFilter) ([]*models.Guest, int64, error) {
	var guests []*models.Guest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Guest{})
	if filter != nil {
		if filter.GuestType != "" {
			query = query.Where("guest_type = ?", strings.ToUpper(filter.GuestType))
		}
		if filter.Keyword != "" {
			like := likePattern(filter.Keyword)
			query = query.Where("LOWER(name) LIKE ? OR LOWER(contact) LIKE ?", like, like)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&guests).Error; err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

// ExistsByContact 检查联系方式是否已被其他客人使用，excludeID 为 0 时不排除
func (r *GuestRepository) ExistsByContact(ctx context.Context, contact string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Guest{}).Where("contact = ?", contact)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// SearchByName 按姓名模糊搜索
func (r *GuestRepository) SearchByName(ctx context.Context, keyword string, limit int) ([]*models.Guest, error) {
	var guests []*models.Guest
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", likePattern(keyword)).
		Order("name ASC").
		Limit(limit).
		Find(&guests).Error
	return guests, err
}

// CountByType 按客人类型统计数量
func (r *GuestRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		GuestType string
		Count     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Guest{}).
		Select("guest_type, COUNT(*) AS count").
		Group("guest_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.GuestType] = row.Count
	}
	return result, nil
}

// likePattern 构造不区分大小写的 LIKE 模式
func likePattern(keyword string) string {
	return "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
}
