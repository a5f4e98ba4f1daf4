// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	KindUnknown            Kind = iota // 未分类
	KindInvalidArgument                // 参数非法
	KindNotFound                       // 资源不存在
	KindConflict                       // 冲突（时段占用、唯一键重复）
	KindPreconditionFailed             // 前置条件不满足
	KindStorageFailure                 // 存储失败
	KindInvalidState                   // 内部状态异常
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindPreconditionFailed:
		return "PreconditionFailed"
	case KindStorageFailure:
		return "StorageFailure"
	case KindInvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewKind 创建带类别的应用错误
func NewKind(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Kind:    e.Kind,
		Err:     e.Err,
	}
}

// WithMessagef 格式化修改错误消息
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Kind:    e.Kind,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown            = NewKind(1000, KindUnknown, "未知错误")
	ErrInvalidParams      = NewKind(1001, KindInvalidArgument, "参数错误")
	ErrNotFound           = NewKind(1002, KindNotFound, "资源不存在")
	ErrAlreadyExists      = NewKind(1003, KindConflict, "资源已存在")
	ErrDatabaseError      = NewKind(1004, KindStorageFailure, "数据库错误")
	ErrCacheError         = NewKind(1005, KindStorageFailure, "缓存错误")
	ErrInternalError      = NewKind(1006, KindInvalidState, "内部错误")
	ErrRateLimitExceed    = NewKind(1008, KindUnknown, "请求过于频繁")
	ErrPreconditionFailed = NewKind(1011, KindPreconditionFailed, "前置条件不满足")
	ErrLockTimeout        = NewKind(1012, KindConflict, "资源繁忙，请稍后重试")
)

// 客人错误码 (3000-3999)
var (
	ErrGuestNotFound        = NewKind(3000, KindNotFound, "客人不存在")
	ErrContactExists        = NewKind(3001, KindConflict, "联系方式已被登记")
	ErrGuestTypeInvalid     = NewKind(3002, KindInvalidArgument, "无效的客人类型")
	ErrDiscountRateInvalid  = NewKind(3003, KindInvalidArgument, "折扣率必须在 0 到 1 之间")
	ErrGuestHasReservations = NewKind(3004, KindPreconditionFailed, "客人存在未结束的预订，无法删除")
)

// 房间错误码 (4000-4999)
var (
	ErrRoomNotFound         = NewKind(4000, KindNotFound, "房间不存在")
	ErrRoomNumberExists     = NewKind(4001, KindConflict, "房间号已存在")
	ErrAmenityInvalid       = NewKind(4002, KindInvalidArgument, "无效的附加服务")
	ErrRoomHasReservations  = NewKind(4003, KindPreconditionFailed, "房间存在未结束的预订，无法删除")
	ErrRoomPriceInvalid     = NewKind(4004, KindInvalidArgument, "房间价格必须大于 0")
	ErrRoomStatusInvalid    = NewKind(4005, KindInvalidArgument, "无效的房间状态")
	ErrOfferingInvalidState = NewKind(4006, KindInvalidState, "房间组合无法还原为基础房间")
)

// 预订错误码 (8000-8999)
var (
	ErrReservationNotFound = NewKind(8000, KindNotFound, "预订不存在")
	ErrReservationConflict = NewKind(8002, KindConflict, "房间在所选日期已被预订")
	ErrStayDatesInvalid    = NewKind(8005, KindInvalidArgument, "退房日期必须晚于入住日期")
	ErrCheckinInPast       = NewKind(8006, KindInvalidArgument, "入住日期不能早于今天")
	ErrGuestRequired       = NewKind(8007, KindInvalidArgument, "请选择客人")
	ErrRoomRequired        = NewKind(8008, KindInvalidArgument, "请选择房间")
	ErrCheckinRequired     = NewKind(8009, KindInvalidArgument, "请选择入住日期")
	ErrCheckoutRequired    = NewKind(8010, KindInvalidArgument, "请选择退房日期")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// KindOf 返回错误所属类别
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsBusinessError 是否为预期内的业务失败（而非存储或内部故障）
func IsBusinessError(err error) bool {
	switch KindOf(err) {
	case KindInvalidArgument, KindNotFound, KindConflict, KindPreconditionFailed:
		return true
	default:
		return false
	}
}
