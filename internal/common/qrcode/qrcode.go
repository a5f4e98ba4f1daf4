// Package qrcode 提供预订确认码的编码与二维码图片生成
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	defaultSize = 256
	pngDataURL  = "data:image/png;base64,"
)

// Generator 二维码生成器
type Generator struct {
	size  int
	level goqrcode.RecoveryLevel
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 设置图片边长（像素），非正数忽略
func WithSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

// WithRecoveryLevel 设置纠错级别
func WithRecoveryLevel(level goqrcode.RecoveryLevel) Option {
	return func(g *Generator) { g.level = level }
}

// NewGenerator 创建生成器，默认 256 像素、15% 纠错
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{size: defaultSize, level: goqrcode.Medium}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePNG 生成 PNG 图片
func (g *Generator) GeneratePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("二维码内容不能为空")
	}
	data, err := goqrcode.Encode(content, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("创建二维码失败: %w", err)
	}
	return data, nil
}

// GenerateDataURL 生成可直接嵌入页面的 Data URL
func (g *Generator) GenerateDataURL(content string) (string, error) {
	data, err := g.GeneratePNG(content)
	if err != nil {
		return "", err
	}
	return pngDataURL + base64.StdEncoding.EncodeToString(data), nil
}

const (
	confirmationPrefix = "HOTEL-RES"
	confirmationSep    = "|"
	dateLayout         = "2006-01-02"
)

// ErrInvalidConfirmation 确认码格式错误
var ErrInvalidConfirmation = errors.New("无效的确认码")

// Confirmation 确认码内容
// 编码格式: HOTEL-RES|预订号|房间号|入住日期|退房日期
type Confirmation struct {
	ReservationNo string
	RoomNo        string
	Checkin       time.Time
	Checkout      time.Time
}

// String 编码为二维码载荷
func (c Confirmation) String() string {
	return strings.Join([]string{
		confirmationPrefix,
		c.ReservationNo,
		c.RoomNo,
		c.Checkin.Format(dateLayout),
		c.Checkout.Format(dateLayout),
	}, confirmationSep)
}

// Matches 确认码与当前预订的房间和日期是否一致，改签后旧码不再匹配
func (c Confirmation) Matches(roomNo string, checkin, checkout time.Time) bool {
	return c.RoomNo == roomNo &&
		c.Checkin.Format(dateLayout) == checkin.Format(dateLayout) &&
		c.Checkout.Format(dateLayout) == checkout.Format(dateLayout)
}

// ConfirmationPayload 构造预订确认码载荷
func ConfirmationPayload(reservationNo, roomNo string, checkin, checkout time.Time) string {
	return Confirmation{ReservationNo: reservationNo, RoomNo: roomNo, Checkin: checkin, Checkout: checkout}.String()
}

// ParseConfirmation 解析确认码载荷
func ParseConfirmation(payload string) (Confirmation, error) {
	parts := strings.Split(payload, confirmationSep)
	if len(parts) != 5 || parts[0] != confirmationPrefix || parts[1] == "" {
		return Confirmation{}, fmt.Errorf("%w: %q", ErrInvalidConfirmation, payload)
	}
	checkin, err := time.Parse(dateLayout, parts[3])
	if err != nil {
		return Confirmation{}, fmt.Errorf("%w: checkin %q", ErrInvalidConfirmation, parts[3])
	}
	checkout, err := time.Parse(dateLayout, parts[4])
	if err != nil {
		return Confirmation{}, fmt.Errorf("%w: checkout %q", ErrInvalidConfirmation, parts[4])
	}
	return Confirmation{ReservationNo: parts[1], RoomNo: parts[2], Checkin: checkin, Checkout: checkout}, nil
}
