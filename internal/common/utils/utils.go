// Package utils 提供通用工具函数
package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ReservationNoPrefix 预订号前缀
const ReservationNoPrefix = "R"

// GenerateReservationNo 生成预订号
// 格式: R + 下单时刻 yyyyMMddHHmmss + 6 位随机数，确认码和前台按号查询都依赖这个格式
func GenerateReservationNo(now time.Time) string {
	return fmt.Sprintf("%s%s%s", ReservationNoPrefix, now.Format("20060102150405"), randomDigits(6))
}

// IsReservationNo 粗校验预订号格式
func IsReservationNo(no string) bool {
	if len(no) != len(ReservationNoPrefix)+20 || !strings.HasPrefix(no, ReservationNoPrefix) {
		return false
	}
	for _, r := range no[len(ReservationNoPrefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func randomDigits(length int) string {
	var result strings.Builder
	for i := 0; i < length; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		result.WriteString(strconv.Itoa(int(n.Int64())))
	}
	return result.String()
}

// DateFormat 日期格式
const DateFormat = "2006-01-02"

// DateOf 截取日历日期，结果为 UTC 零点
// 先换算到 loc 再取年月日，loc 为空时使用 t 自身时区
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD 日期，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, strings.TrimSpace(s), time.UTC)
}

// FormatDate 格式化日期
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// NightsBetween 计算入住晚数
func NightsBetween(checkin, checkout time.Time) int {
	return int(DateOf(checkout, nil).Sub(DateOf(checkin, nil)).Hours() / 24)
}

// RoundMoney 金额保留两位小数
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr 返回 float64 指针
func Float64Ptr(f float64) *float64 {
	return &f
}

// SafeString 安全获取字符串指针的值
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Unique 切片去重，保留首次出现顺序
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{})
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// Pagination 分页参数
type Pagination struct {
	Page     int   `json:"page" form:"page"`
	PageSize int   `json:"page_size" form:"page_size"`
	Total    int64 `json:"total"`
}

// GetOffset 获取偏移量
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 获取限制数
func (p *Pagination) GetLimit() int {
	return p.PageSize
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}
