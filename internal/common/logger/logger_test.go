// Package logger 日志模块单元测试
package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dumeirei/hotel-booking-core/internal/common/config"
)

// ==================== Init 函数测试 ====================

func TestInit_ConsoleFormat(t *testing.T) {
	err := Init(&config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout", Caller: true})
	assert.NoError(t, err)
	assert.NotNil(t, log)
	assert.NotNil(t, sugar)
}

func TestInit_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "hotel.log")

	err := Init(&config.LoggerConfig{
		Level:      "debug",
		Format:     "json",
		Output:     "file",
		FilePath:   logFile,
		MaxSize:    1,
		MaxBackups: 3,
		MaxAge:     7,
	})
	require.NoError(t, err)

	Info("预订创建成功", ReservationID(7), RoomID(3), GuestID(9))
	_ = Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "预订创建成功", entry["msg"])
	assert.Equal(t, float64(7), entry["reservation_id"])
	assert.Equal(t, float64(3), entry["room_id"])
	assert.Equal(t, float64(9), entry["guest_id"])
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, getLogLevel(tt.level))
		})
	}
}

// ==================== 全局日志器测试 ====================

func TestGetLogger_LazyDefault(t *testing.T) {
	log = nil

	l := GetLogger()
	assert.NotNil(t, l)
	assert.Same(t, l, GetLogger())
}

// ==================== 字段构造测试 ====================

func TestDomainFields(t *testing.T) {
	checkin := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	checkout := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		field zap.Field
		key   string
	}{
		{"GuestID", GuestID(1), "guest_id"},
		{"RoomID", RoomID(2), "room_id"},
		{"ReservationID", ReservationID(3), "reservation_id"},
		{"ReservationNo", ReservationNo("R20250301"), "reservation_no"},
		{"StayDates", StayDates(checkin, checkout), "stay"},
		{"Module", Module("reservation"), "module"},
		{"Action", Action("create"), "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.field.Key)
		})
	}

	assert.Equal(t, "2025-03-01/2025-03-05", StayDates(checkin, checkout).String)
}
