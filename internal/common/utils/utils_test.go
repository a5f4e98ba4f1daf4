// Package utils 工具函数单元测试
package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReservationNo(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 30, 5, 0, time.UTC)
	no := GenerateReservationNo(now)

	assert.True(t, strings.HasPrefix(no, "R20250301143005"))
	// 前缀 + 14位时间戳 + 6位随机数
	assert.Len(t, no, 1+14+6)
	assert.True(t, IsReservationNo(no))
}

func TestGenerateReservationNo_Uniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[GenerateReservationNo(now)] = true
	}
	assert.Greater(t, len(seen), 90)
}

func TestIsReservationNo(t *testing.T) {
	assert.False(t, IsReservationNo(""))
	assert.False(t, IsReservationNo("R2025"))
	assert.False(t, IsReservationNo("X20250301143005123456"))
	assert.False(t, IsReservationNo("R2025030114300512345a"))
	assert.True(t, IsReservationNo("R20250301143005123456"))
}

func TestDateOf(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)

	t.Run("截取到UTC零点", func(t *testing.T) {
		in := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), DateOf(in, nil))
	})

	t.Run("按时区换算日期", func(t *testing.T) {
		// UTC 18:30 在东八区已是次日
		in := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), DateOf(in, shanghai))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2025-03-05", FormatDate(d))

	_, err = ParseDate("2025/03/05")
	assert.Error(t, err)
}

func TestNightsBetween(t *testing.T) {
	checkin := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, NightsBetween(checkin, checkin.AddDate(0, 0, 4)))
	assert.Equal(t, 1, NightsBetween(checkin, checkin.AddDate(0, 0, 1)))
	assert.Equal(t, 0, NightsBetween(checkin, checkin))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 37.5, RoundMoney(150*0.25))
	assert.Equal(t, 33.33, RoundMoney(33.333333))
	assert.Equal(t, 0.1, RoundMoney(0.1+0.0000001))
}

func TestPointerHelpers(t *testing.T) {
	assert.Equal(t, "a", *StringPtr("a"))
	assert.Equal(t, 0.25, *Float64Ptr(0.25))
	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "b", SafeString(StringPtr("b")))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"spa", "minibar"}, Unique([]string{"spa", "minibar", "spa"}))
	assert.Empty(t, Unique([]int64{}))
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name         string
		in           Pagination
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"默认值", Pagination{}, 1, 10, 0},
		{"第三页", Pagination{Page: 3, PageSize: 20}, 3, 20, 40},
		{"超出上限", Pagination{Page: 1, PageSize: 500}, 1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.GetLimit())
			assert.Equal(t, tt.wantOffset, p.GetOffset())
		})
	}
}
