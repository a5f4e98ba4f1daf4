// Package hotel 提供酒店客人、客房与预订的 HTTP Handler
package hotel

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-core/internal/common/handler"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
)

// GuestHandler 客人处理器
type GuestHandler struct {
	guestService       *hotelService.GuestService
	reservationService *hotelService.ReservationService
}

// NewGuestHandler 创建客人处理器
func NewGuestHandler(guestSvc *hotelService.GuestService, reservationSvc *hotelService.ReservationService) *GuestHandler {
	return &GuestHandler{
		guestService:       guestSvc,
		reservationService: reservationSvc,
	}
}

// Create 登记客人
// @Summary 登记客人
// @Tags 客人
// @Accept json
// @Produce json
// @Param request body hotelService.GuestRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Guest}
// @Failure 409 {object} response.Response "联系方式已存在"
// @Router /api/v1/guests [post]
func (h *GuestHandler) Create(c *gin.Context) {
	var req hotelService.GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	guest, err := h.guestService.Create(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Created(c, guest)
}

// Update 更新客人
// @Summary 更新客人
// @Tags 客人
// @Accept json
// @Produce json
// @Param id path int true "客人ID"
// @Param request body hotelService.GuestRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Guest}
// @Router /api/v1/guests/{id} [put]
func (h *GuestHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "客人")
	if !ok {
		return
	}

	var req hotelService.GuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	guest, err := h.guestService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, guest)
}

// Delete 删除客人
// @Summary 删除客人
// @Description 客人存在未结束的预订时拒绝删除
// @Tags 客人
// @Produce json
// @Param id path int true "客人ID"
// @Success 200 {object} response.Response
// @Failure 412 {object} response.Response "存在未结束的预订"
// @Router /api/v1/guests/{id} [delete]
func (h *GuestHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "客人")
	if !ok {
		return
	}

	err := h.guestService.Delete(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// Get 获取客人详情
// @Summary 获取客人详情
// @Tags 客人
// @Produce json
// @Param id path int true "客人ID"
// @Success 200 {object} response.Response{data=models.Guest}
// @Router /api/v1/guests/{id} [get]
func (h *GuestHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "客人")
	if !ok {
		return
	}

	guest, err := h.guestService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, guest)
}

// List 客人列表
// @Summary 客人列表
// @Tags 客人
// @Produce json
// @Param guest_type query string false "客人类型 (Regular/VIP)"
// @Param keyword query string false "姓名或联系方式"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/guests [get]
func (h *GuestHandler) List(c *gin.Context) {
	q := &hotelService.GuestQuery{
		Pagination: handler.BindPagination(c),
		GuestType:  c.Query("guest_type"),
		Keyword:    c.Query("keyword"),
	}

	list, total, err := h.guestService.List(c.Request.Context(), q)
	handler.MustSucceedPage(c, err, list, total, q.Page, q.PageSize)
}

// Search 按姓名搜索客人
// @Summary 按姓名搜索客人
// @Tags 客人
// @Produce json
// @Param name query string true "姓名关键字"
// @Param limit query int false "返回数量"
// @Success 200 {object} response.Response{data=[]models.Guest}
// @Router /api/v1/guests/search [get]
func (h *GuestHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.BadRequest(c, "请输入姓名关键字")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.guestService.SearchByName(c.Request.Context(), name, limit)
	handler.MustSucceed(c, err, list)
}

// Stats 客人统计
// @Summary 客人统计
// @Tags 客人
// @Produce json
// @Success 200 {object} response.Response{data=hotelService.GuestStats}
// @Router /api/v1/guests/stats [get]
func (h *GuestHandler) Stats(c *gin.Context) {
	stats, err := h.guestService.Stats(c.Request.Context())
	handler.MustSucceed(c, err, stats)
}

// Reservations 客人的预订记录
// @Summary 客人的预订记录
// @Tags 客人
// @Produce json
// @Param id path int true "客人ID"
// @Success 200 {object} response.Response{data=[]models.Reservation}
// @Router /api/v1/guests/{id}/reservations [get]
func (h *GuestHandler) Reservations(c *gin.Context) {
	id, ok := handler.ParseID(c, "客人")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.guestService.Get(ctx, id); handler.HandleError(c, err) {
		return
	}
	list, err := h.reservationService.ListByGuest(ctx, id)
	handler.MustSucceed(c, err, list)
}

// RegisterRoutes 注册客人路由
func (h *GuestHandler) RegisterRoutes(r *gin.RouterGroup) {
	guests := r.Group("/guests")
	{
		guests.POST("", h.Create)
		guests.GET("", h.List)
		guests.GET("/search", h.Search)
		guests.GET("/stats", h.Stats)
		guests.GET("/:id", h.Get)
		guests.PUT("/:id", h.Update)
		guests.DELETE("/:id", h.Delete)
		guests.GET("/:id/reservations", h.Reservations)
	}
}
