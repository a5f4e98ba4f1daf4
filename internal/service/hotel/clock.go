package hotel

import (
	"time"

	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
)

// Clock 业务日期来源
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock 创建按 loc 计算“今天”的时钟
func NewClock(loc *time.Location) Clock {
	return NewClockAt(time.Now, loc)
}

// NewClockAt 使用指定时间源，测试时固定“今天”
func NewClockAt(now func() time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: now, loc: loc}
}

// Now 当前时刻
func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Today 当天零点（UTC 存储形式）
func (c Clock) Today() time.Time {
	if c.now == nil {
		return utils.DateOf(time.Now(), time.UTC)
	}
	return utils.DateOf(c.now(), c.loc)
}
