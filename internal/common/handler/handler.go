// Package handler 提供 API Handler 的通用辅助函数
// 统一错误处理、参数解析与分页绑定
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
)

// StatusOf 按错误分类映射 HTTP 状态码
func StatusOf(kind errors.Kind) int {
	switch kind {
	case errors.KindInvalidArgument:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 处理错误并发送适当的响应
// err 为 nil 时返回 false；否则已写出响应，调用方应直接 return
//
// 使用示例:
//
//	room, err := svc.GetRoom(ctx, id)
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	if !errors.IsAppError(err) {
		logger.Error("未分类错误", logger.Err(err), logger.String("path", c.FullPath()))
		response.InternalError(c, "")
		return true
	}

	appErr := errors.GetAppError(err)
	status := StatusOf(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("请求处理失败", logger.Err(err), logger.Int("code", appErr.Code), logger.String("path", c.FullPath()))
	}
	response.Error(c, status, appErr.Code, appErr.Message)
	return true
}

// MustSucceed 有错误则返回错误响应，否则返回成功响应
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedPage 分页响应版本
//
// 使用示例:
//
//	list, total, err := svc.ListRooms(ctx, p.GetOffset(), p.GetLimit(), filter)
//	MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// ParseID 解析路径参数 "id" 为 int64
// 解析失败时已发送 400 响应，调用方应直接 return
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为正整数 ID
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID
// 参数为空返回 (nil, true)；解析失败返回 (nil, false) 并已发送 400 响应
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return nil, false
	}
	return &id, true
}

// ParseQueryFloat 解析查询参数中的可选浮点数
func ParseQueryFloat(c *gin.Context, paramName string) (*float64, bool) {
	s := c.Query(paramName)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		response.BadRequest(c, "无效的参数 "+paramName)
		return nil, false
	}
	return &f, true
}

// ParseQueryDate 从查询参数解析可选日期 (YYYY-MM-DD)
func ParseQueryDate(c *gin.Context, paramName, errorMsg string) (*time.Time, bool) {
	dateStr := c.Query(paramName)
	if dateStr == "" {
		return nil, true
	}
	t, err := utils.ParseDate(dateStr)
	if err != nil {
		response.BadRequest(c, errorMsg)
		return nil, false
	}
	return &t, true
}

// ParseRequiredStay 解析必填的 checkin/checkout 查询参数
func ParseRequiredStay(c *gin.Context) (time.Time, time.Time, bool) {
	if c.Query("checkin") == "" || c.Query("checkout") == "" {
		response.BadRequest(c, "请指定入住和退房日期")
		return time.Time{}, time.Time{}, false
	}

	checkin, ok := ParseQueryDate(c, "checkin", "无效的入住日期格式")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	checkout, ok := ParseQueryDate(c, "checkout", "无效的退房日期格式")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return *checkin, *checkout, true
}

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, page_size=10, 最大 page_size=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	p.Normalize()
	return p
}
