package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// RoomRepository 房间仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// WithTx 绑定到事务
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDForUpdate 获取房间并加行锁，须在事务内调用
// SQLite 不支持 FOR UPDATE，方言会忽略该子句
func (r *RoomRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Update 更新房间
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// UpdateStatus 更新房间状态
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Update("status", status).Error
}

// Delete 删除房间
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

// RoomFilter 房间查询过滤条件
type RoomFilter struct {
	Type     string
	Status   string
	MinPrice *float64
	MaxPrice *float64
	Keyword  string // 描述关键字
}

// List 获取房间列表
func (r *RoomRepository) List(ctx context.Context, offset, limit int, filter *RoomFilter) ([]*models.Room, int64, error) {
	var rooms []*models.Room
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Room{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("room_no ASC").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// ListAll 获取全部房间，按房间号排序
func (r *RoomRepository) ListAll(ctx context.Context, filter *RoomFilter) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Room{}), filter).
		Order("room_no ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *RoomRepository) applyFilter(query *gorm.DB, filter *RoomFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Type != "" {
		query = query.Where("LOWER(type) = LOWER(?)", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("LOWER(status) = LOWER(?)", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("base_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("base_price <= ?", *filter.MaxPrice)
	}
	if filter.Keyword != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(filter.Keyword))
	}
	return query
}

// ExistsByRoomNo 检查房间号是否已被其他房间使用，excludeID 为 0 时不排除
func (r *RoomRepository) ExistsByRoomNo(ctx context.Context, roomNo string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).Where("room_no = ?", roomNo)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// ListTypes 获取全部房型
func (r *RoomRepository) ListTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Distinct("type").
		Order("type ASC").
		Pluck("type", &types).Error
	return types, err
}

// AveragePriceByType 按房型统计平均基础价格
func (r *RoomRepository) AveragePriceByType(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		Type     string
		AvgPrice float64
	}
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Select("type, AVG(base_price) AS avg_price").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(rows))
	for _, row := range rows {
		result[row.Type] = row.AvgPrice
	}
	return result, nil
}

// CountByStatus 按状态统计房间数量
func (r *RoomRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		status := row.Status
		if normalized, ok := models.NormalizeRoomStatus(status); ok {
			status = normalized
		}
		result[status] += row.Count
	}
	return result, nil
}

// CheapestAvailable 获取基础价格最低的空闲房间
func (r *RoomRepository) CheapestAvailable(ctx context.Context) (*models.Room, error) {
	return r.firstAvailable(ctx, "base_price ASC, room_no ASC")
}

// MostExpensiveAvailable 获取基础价格最高的空闲房间
func (r *RoomRepository) MostExpensiveAvailable(ctx context.Context) (*models.Room, error) {
	return r.firstAvailable(ctx, "base_price DESC, room_no ASC")
}

func (r *RoomRepository) firstAvailable(ctx context.Context, order string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("LOWER(status) = LOWER(?)", models.RoomStatusAvailable).
		Order(order).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}
