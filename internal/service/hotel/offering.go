package hotel

import (
	"sort"
	"strings"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// Amenity 房间附加服务
type Amenity string

const (
	AmenitySpa     Amenity = "spa"
	AmenityMinibar Amenity = "minibar"
)

type amenitySpec struct {
	increment float64
	label     string
	rank      int // 描述拼接顺序
}

var amenitySpecs = map[Amenity]amenitySpec{
	AmenitySpa:     {increment: 50.00, label: "Spa Access", rank: 0},
	AmenityMinibar: {increment: 25.00, label: "Minibar", rank: 1},
}

// Increment 每晚加价
func (a Amenity) Increment() float64 { return amenitySpecs[a].increment }

// Label 描述后缀
func (a Amenity) Label() string { return amenitySpecs[a].label }

// ParseAmenity 解析附加服务标签（忽略大小写）
func ParseAmenity(tag string) (Amenity, error) {
	a := Amenity(strings.ToLower(strings.TrimSpace(tag)))
	if _, ok := amenitySpecs[a]; !ok {
		return "", errors.ErrAmenityInvalid.WithMessagef("无效的附加服务: %s", tag)
	}
	return a, nil
}

// ParseAmenities 解析并规范化一组附加服务标签
func ParseAmenities(tags []string) ([]Amenity, error) {
	list := make([]Amenity, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		a, err := ParseAmenity(tag)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return CanonicalAmenities(list), nil
}

// CanonicalAmenities 去重并按 Spa、Minibar 的顺序排列
func CanonicalAmenities(list []Amenity) []Amenity {
	seen := make(map[Amenity]bool, len(list))
	out := make([]Amenity, 0, len(list))
	for _, a := range list {
		if _, ok := amenitySpecs[a]; !ok || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return amenitySpecs[out[i]].rank < amenitySpecs[out[j]].rank
	})
	return out
}

// FormatAmenities 序列化为 amenities 列值
func FormatAmenities(list []Amenity) *string {
	tags := make([]string, 0, len(list))
	for _, a := range CanonicalAmenities(list) {
		tags = append(tags, string(a))
	}
	s := strings.Join(tags, ",")
	return &s
}

// RoomOffering 可售房间（基础房间加附加服务）
type RoomOffering interface {
	ID() int64
	Number() string
	Type() string
	Status() string
	Price() float64
	Description() string
	IsAvailable() bool
	IsOccupied() bool
}

// BaseRoom 基础房间
type BaseRoom struct {
	room        *models.Room
	description string
}

// NewBaseRoom 以房间的基础价格和描述创建基础房间
func NewBaseRoom(room *models.Room) *BaseRoom {
	return &BaseRoom{
		room:        room,
		description: BaseDescription(room.Type, room.Description),
	}
}

// BaseDescription 描述为空时使用 "<房型> Room"
func BaseDescription(roomType, description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return strings.TrimSpace(roomType) + " Room"
}

// Room 底层房间模型
func (b *BaseRoom) Room() *models.Room { return b.room }

func (b *BaseRoom) ID() int64           { return b.room.ID }
func (b *BaseRoom) Number() string      { return b.room.RoomNo }
func (b *BaseRoom) Type() string        { return b.room.Type }
func (b *BaseRoom) Status() string      { return b.room.Status }
func (b *BaseRoom) Price() float64      { return b.room.BasePrice }
func (b *BaseRoom) Description() string { return b.description }
func (b *BaseRoom) IsAvailable() bool   { return b.room.IsStatus(models.RoomStatusAvailable) }
func (b *BaseRoom) IsOccupied() bool    { return b.room.IsStatus(models.RoomStatusOccupied) }

// amenityDecorator 在被包装房间上叠加一项附加服务
type amenityDecorator struct {
	RoomOffering
	amenity Amenity
}

func (d *amenityDecorator) Price() float64 {
	return d.RoomOffering.Price() + d.amenity.Increment()
}

func (d *amenityDecorator) Description() string {
	return d.RoomOffering.Description() + ", " + d.amenity.Label()
}

// Decorate 在 offering 外叠加附加服务
func Decorate(offering RoomOffering, amenity Amenity) RoomOffering {
	return &amenityDecorator{RoomOffering: offering, amenity: amenity}
}

// NewOffering 按规范顺序组合房间和附加服务
func NewOffering(room *models.Room, amenities ...Amenity) RoomOffering {
	var offering RoomOffering = NewBaseRoom(room)
	for _, a := range CanonicalAmenities(amenities) {
		offering = Decorate(offering, a)
	}
	return offering
}

// BaseRoomOf 沿包装链还原基础房间
func BaseRoomOf(offering RoomOffering) (*BaseRoom, error) {
	for offering != nil {
		switch o := offering.(type) {
		case *BaseRoom:
			return o, nil
		case *amenityDecorator:
			offering = o.RoomOffering
		default:
			return nil, errors.ErrOfferingInvalidState
		}
	}
	return nil, errors.ErrOfferingInvalidState
}

// AmenitiesOf 返回 offering 上叠加的附加服务（规范顺序）
func AmenitiesOf(offering RoomOffering) []Amenity {
	var list []Amenity
	for {
		d, ok := offering.(*amenityDecorator)
		if !ok {
			break
		}
		list = append(list, d.amenity)
		offering = d.RoomOffering
	}
	return CanonicalAmenities(list)
}

// AmenitiesFromDescription 从描述文本中识别附加服务标签
// 仅用于 amenities 列为空的历史数据
func AmenitiesFromDescription(description string) []Amenity {
	var list []Amenity
	for a, spec := range amenitySpecs {
		if strings.Contains(description, spec.label) {
			list = append(list, a)
		}
	}
	return CanonicalAmenities(list)
}

// PriceFromDescription 根据描述中的附加服务标签重建总价
// TODO: 历史数据补齐 amenities 列后删除
func PriceFromDescription(basePrice float64, description string) float64 {
	price := basePrice
	for _, a := range AmenitiesFromDescription(description) {
		price += a.Increment()
	}
	return price
}

// stripAmenityLabels 去掉描述中拼接的附加服务后缀
func stripAmenityLabels(description string, amenities []Amenity) string {
	for i := len(amenities) - 1; i >= 0; i-- {
		suffix := ", " + amenities[i].Label()
		if strings.HasSuffix(description, suffix) {
			description = strings.TrimSuffix(description, suffix)
		} else {
			description = strings.Replace(description, suffix, "", 1)
		}
	}
	return description
}

// StoredAmenities 持久化房间上的附加服务，amenities 列为空时从描述恢复
func StoredAmenities(room *models.Room) []Amenity {
	if room.Amenities == nil {
		return AmenitiesFromDescription(room.Description)
	}
	var list []Amenity
	for _, tag := range strings.Split(*room.Amenities, ",") {
		if a, err := ParseAmenity(tag); err == nil {
			list = append(list, a)
		}
	}
	return CanonicalAmenities(list)
}

// OfferingFromRoom 将持久化房间还原为可售房间
func OfferingFromRoom(room *models.Room) RoomOffering {
	amenities := StoredAmenities(room)
	base := *room
	base.Description = stripAmenityLabels(room.Description, amenities)
	return NewOffering(&base, amenities...)
}
