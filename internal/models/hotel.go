// Package models 定义数据模型
package models

import (
	"strings"
	"time"
)

// Guest 客人模型
type Guest struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Contact      string    `gorm:"type:varchar(100);not null;index" json:"contact"`
	GuestType    string    `gorm:"type:varchar(20);not null;default:REGULAR" json:"guest_type"`
	DiscountRate float64   `gorm:"type:decimal(5,4);not null;default:0" json:"discount_rate"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Guest) TableName() string {
	return "guests"
}

// 客人类型
const (
	GuestTypeRegular = "REGULAR" // 普通客人
	GuestTypeVIP     = "VIP"     // VIP 客人
)

// Room 房间模型
type Room struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomNo      string    `gorm:"type:varchar(20);not null;index" json:"room_no"`
	Type        string    `gorm:"type:varchar(50);not null;index" json:"type"`
	Status      string    `gorm:"type:varchar(20);not null;default:Available;index" json:"status"`
	BasePrice   float64   `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Description string    `gorm:"type:text" json:"description"`
	Amenities   *string   `gorm:"type:varchar(100)" json:"amenities,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// 房间状态
const (
	RoomStatusAvailable   = "Available"    // 空闲
	RoomStatusOccupied    = "Occupied"     // 已占用
	RoomStatusMaintenance = "Maintenance"  // 维修中
	RoomStatusOutOfOrder  = "Out of Order" // 停用
	RoomStatusReserved    = "Reserved"     // 已保留
)

// RoomStatuses 全部房间状态
var RoomStatuses = []string{
	RoomStatusAvailable,
	RoomStatusOccupied,
	RoomStatusMaintenance,
	RoomStatusOutOfOrder,
	RoomStatusReserved,
}

// NormalizeRoomStatus 将状态规范为标准写法，不识别时返回 false
func NormalizeRoomStatus(status string) (string, bool) {
	for _, s := range RoomStatuses {
		if strings.EqualFold(strings.TrimSpace(status), s) {
			return s, true
		}
	}
	return "", false
}

// IsStatus 房间状态比较（忽略大小写）
func (r *Room) IsStatus(status string) bool {
	return strings.EqualFold(r.Status, status)
}

// 前台预置房型
const (
	RoomTypeSingle       = "Single"
	RoomTypeDouble       = "Double"
	RoomTypeSuite        = "Suite"
	RoomTypeDeluxe       = "Deluxe"
	RoomTypeExecutive    = "Executive"
	RoomTypePresidential = "Presidential"
)

// Reservation 预订模型
type Reservation struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReservationNo string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"reservation_no"`
	GuestID       int64     `gorm:"not null;index" json:"guest_id"`
	RoomID        int64     `gorm:"not null;index:idx_reservation_room_stay" json:"room_id"`
	CheckinDate   time.Time `gorm:"type:date;not null;index:idx_reservation_room_stay" json:"checkin_date"`
	CheckoutDate  time.Time `gorm:"type:date;not null" json:"checkout_date"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Guest *Guest `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"guest,omitempty"`
	Room  *Room  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
}

// TableName 表名
func (Reservation) TableName() string {
	return "reservations"
}

// AllModels 需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{&Guest{}, &Room{}, &Reservation{}}
}
