package hotel

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
)

// InputValidator 请求参数校验
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator 创建参数校验器并注册业务标签
func NewInputValidator() *InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 错误信息使用 json 字段名
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "guest_type", func(fl validator.FieldLevel) bool {
		_, err := ParseGuestType(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "amenity", func(fl validator.FieldLevel) bool {
		_, err := ParseAmenity(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "room_status", func(fl validator.FieldLevel) bool {
		_, ok := models.NormalizeRoomStatus(fl.Field().String())
		return ok
	})
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseDate(fl.Field().String())
		return err == nil
	})

	return &InputValidator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Validate 校验结构体，失败时返回 InvalidArgument 类错误
func (v *InputValidator) Validate(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.ErrInvalidParams.WithError(err)
	}

	fe := fieldErrs[0]
	return baseError(fe).WithMessage(fieldMessage(fe)).WithError(err)
}

// baseError 业务标签对应各自的错误码
func baseError(fe validator.FieldError) *errors.AppError {
	switch fe.Tag() {
	case "guest_type":
		return errors.ErrGuestTypeInvalid
	case "amenity":
		return errors.ErrAmenityInvalid
	case "room_status":
		return errors.ErrRoomStatusInvalid
	}
	switch fe.Field() {
	case "base_price":
		return errors.ErrRoomPriceInvalid
	case "discount_rate":
		return errors.ErrDiscountRateInvalid
	}
	return errors.ErrInvalidParams
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " 不能为空"
	case "max":
		return fmt.Sprintf("%s 长度不能超过 %s", field, fe.Param())
	case "gt":
		if field == "base_price" {
			return errors.ErrRoomPriceInvalid.Message
		}
		return fmt.Sprintf("%s 必须大于 %s", field, fe.Param())
	case "gte", "lte":
		if field == "discount_rate" {
			return errors.ErrDiscountRateInvalid.Message
		}
		return fmt.Sprintf("%s 超出取值范围", field)
	case "guest_type":
		return fmt.Sprintf("无效的客人类型: %v", fe.Value())
	case "amenity":
		return fmt.Sprintf("无效的附加服务: %v", fe.Value())
	case "room_status":
		return fmt.Sprintf("无效的房间状态: %v", fe.Value())
	case "date":
		return fmt.Sprintf("%s 日期格式应为 YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s 不合法", field)
	}
}
