// Package response 提供统一的 API 响应格式
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyRequestID 请求 ID 在 gin 上下文中的键，由 RequestID 中间件写入
const ContextKeyRequestID = "request_id"

// Response API 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// PageData 分页数据结构
type PageData struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// 错误响应的默认消息
var defaultMessages = map[int]string{
	http.StatusNotFound:            "not found",
	http.StatusInternalServerError: "internal server error",
	http.StatusTooManyRequests:     "too many requests",
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

// abort 以 HTTP 状态码作为业务码返回错误
func abort(c *gin.Context, status int, message string) {
	if message == "" {
		message = defaultMessages[status]
	}
	write(c, status, status, message, nil)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, 0, "success", data)
}

// Created 创建成功，客人、房间、预订创建接口使用
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, 0, "created", data)
}

// SuccessWithMessage 成功响应（带消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, 0, message, data)
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	write(c, http.StatusOK, 0, "success", PageData{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error 业务错误响应，HTTP 状态码由调用方决定
func Error(c *gin.Context, status, code int, message string) {
	write(c, status, code, message, nil)
}

// BadRequest 请求参数错误
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// NotFound 资源或接口不存在
func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, message)
}

// InternalError 服务器内部错误
func InternalError(c *gin.Context, message string) {
	abort(c, http.StatusInternalServerError, message)
}

// TooManyRequests 请求过于频繁
func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, message)
}
