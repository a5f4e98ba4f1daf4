// Package hotel 提供酒店预订核心服务
package hotel

import (
	"strings"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// PricingVariant 客人计价类型
type PricingVariant interface {
	Type() string
	Name() string
	Contact() string
	DiscountRate() float64
	CalculateDiscount(amount float64) float64

	pricingVariant()
}

// RegularGuest 普通客人，不享受折扣
type RegularGuest struct {
	name    string
	contact string
}

func (g *RegularGuest) Type() string          { return models.GuestTypeRegular }
func (g *RegularGuest) Name() string          { return g.name }
func (g *RegularGuest) Contact() string       { return g.contact }
func (g *RegularGuest) DiscountRate() float64 { return 0 }

// CalculateDiscount 原样返回金额
func (g *RegularGuest) CalculateDiscount(amount float64) float64 { return amount }

func (g *RegularGuest) pricingVariant() {}

// VIPGuest VIP 客人
type VIPGuest struct {
	name    string
	contact string
	rate    float64
}

func (g *VIPGuest) Type() string          { return models.GuestTypeVIP }
func (g *VIPGuest) Name() string          { return g.name }
func (g *VIPGuest) Contact() string       { return g.contact }
func (g *VIPGuest) DiscountRate() float64 { return g.rate }

// CalculateDiscount 返回 amount * rate
func (g *VIPGuest) CalculateDiscount(amount float64) float64 { return amount * g.rate }

func (g *VIPGuest) pricingVariant() {}

// CalculateDiscount 按客人类型计算折扣金额
func CalculateDiscount(v PricingVariant, amount float64) float64 {
	return v.CalculateDiscount(amount)
}

// ParseGuestType 解析客人类型标签（忽略大小写）
func ParseGuestType(tag string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case models.GuestTypeRegular:
		return models.GuestTypeRegular, nil
	case models.GuestTypeVIP:
		return models.GuestTypeVIP, nil
	default:
		return "", errors.ErrGuestTypeInvalid.WithMessagef("无效的客人类型: %s", tag)
	}
}

// NewGuest 按类型标签创建客人计价类型，普通客人忽略 rate
func NewGuest(tag, name, contact string, rate float64) (PricingVariant, error) {
	guestType, err := ParseGuestType(tag)
	if err != nil {
		return nil, err
	}
	if guestType == models.GuestTypeRegular {
		return &RegularGuest{name: name, contact: contact}, nil
	}
	if rate < 0 || rate > 1 {
		return nil, errors.ErrDiscountRateInvalid
	}
	return &VIPGuest{name: name, contact: contact, rate: rate}, nil
}

// VariantOf 将持久化的客人还原为计价类型，未知类型按普通客人处理
func VariantOf(guest *models.Guest) PricingVariant {
	if strings.EqualFold(guest.GuestType, models.GuestTypeVIP) {
		return &VIPGuest{name: guest.Name, contact: guest.Contact, rate: guest.DiscountRate}
	}
	return &RegularGuest{name: guest.Name, contact: guest.Contact}
}

// Quote 报价
type Quote struct {
	GuestID        int64    `json:"guest_id"`
	GuestType      string   `json:"guest_type"`
	DiscountRate   float64  `json:"discount_rate"`
	RoomID         int64    `json:"room_id"`
	RoomNo         string   `json:"room_no"`
	Description    string   `json:"description"`
	Amenities      []string `json:"amenities"`
	CheckinDate    string   `json:"checkin_date"`
	CheckoutDate   string   `json:"checkout_date"`
	Nights         int      `json:"nights"`
	NightlyPrice   float64  `json:"nightly_price"`
	Subtotal       float64  `json:"subtotal"`
	DiscountResult float64  `json:"discount_result"`
}

// NewQuote 计算入住区间的报价
func NewQuote(v PricingVariant, offering RoomOffering, stay StayInterval) *Quote {
	nights := stay.Nights()
	nightly := offering.Price()
	subtotal := utils.RoundMoney(nightly * float64(nights))

	tags := make([]string, 0, 2)
	for _, a := range AmenitiesOf(offering) {
		tags = append(tags, string(a))
	}

	return &Quote{
		GuestType:      v.Type(),
		DiscountRate:   v.DiscountRate(),
		RoomID:         offering.ID(),
		RoomNo:         offering.Number(),
		Description:    offering.Description(),
		Amenities:      tags,
		CheckinDate:    utils.FormatDate(stay.Checkin),
		CheckoutDate:   utils.FormatDate(stay.Checkout),
		Nights:         nights,
		NightlyPrice:   nightly,
		Subtotal:       subtotal,
		DiscountResult: utils.RoundMoney(CalculateDiscount(v, subtotal)),
	}
}
