package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// setupTestDB 创建内存 SQLite 数据库并迁移表结构
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，固定为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// day 构造 UTC 零点日期
func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func createGuest(t *testing.T, db *gorm.DB, name, contact, guestType string) *models.Guest {
	t.Helper()
	guest := &models.Guest{Name: name, Contact: contact, GuestType: guestType}
	if guestType == models.GuestTypeVIP {
		guest.DiscountRate = 0.25
	}
	require.NoError(t, db.Create(guest).Error)
	return guest
}

func createRoom(t *testing.T, db *gorm.DB, roomNo, roomType string, price float64, status string) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomNo:      roomNo,
		Type:        roomType,
		Status:      status,
		BasePrice:   price,
		Description: roomType + " Room",
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

var reservationSeq int

func createReservation(t *testing.T, db *gorm.DB, guestID, roomID int64, checkin, checkout time.Time) *models.Reservation {
	t.Helper()
	reservationSeq++
	reservation := &models.Reservation{
		ReservationNo: fmt.Sprintf("R%s%04d", checkin.Format("20060102"), reservationSeq),
		GuestID:       guestID,
		RoomID:        roomID,
		CheckinDate:   checkin,
		CheckoutDate:  checkout,
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}
