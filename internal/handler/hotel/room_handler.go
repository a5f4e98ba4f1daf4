package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-core/internal/common/handler"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
)

// RoomHandler 客房处理器
type RoomHandler struct {
	roomService        *hotelService.RoomService
	reservationService *hotelService.ReservationService
}

// NewRoomHandler 创建客房处理器
func NewRoomHandler(roomSvc *hotelService.RoomService, reservationSvc *hotelService.ReservationService) *RoomHandler {
	return &RoomHandler{
		roomService:        roomSvc,
		reservationService: reservationSvc,
	}
}

// Create 新增客房
// @Summary 新增客房
// @Description amenities 可选 spa、minibar，价格与描述按附加服务计算
// @Tags 客房
// @Accept json
// @Produce json
// @Param request body hotelService.RoomRequest true "请求参数"
// @Success 201 {object} response.Response{data=hotelService.RoomInfo}
// @Failure 409 {object} response.Response "房间号已存在"
// @Router /api/v1/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req hotelService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Created(c, room)
}

// Update 更新客房
// @Summary 更新客房
// @Tags 客房
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Param request body hotelService.RoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.RoomInfo}
// @Router /api/v1/rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req hotelService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.roomService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, room)
}

// Delete 删除客房
// @Summary 删除客房
// @Tags 客房
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response
// @Failure 412 {object} response.Response "存在未结束的预订"
// @Router /api/v1/rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	err := h.roomService.Delete(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// Get 获取客房详情
// @Summary 获取客房详情
// @Tags 客房
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=hotelService.RoomInfo}
// @Router /api/v1/rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	room, err := h.roomService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// List 客房列表
// @Summary 客房列表
// @Tags 客房
// @Produce json
// @Param type query string false "房型"
// @Param status query string false "状态"
// @Param min_price query number false "最低价格"
// @Param max_price query number false "最高价格"
// @Param keyword query string false "房间号或描述"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	minPrice, ok := handler.ParseQueryFloat(c, "min_price")
	if !ok {
		return
	}
	maxPrice, ok := handler.ParseQueryFloat(c, "max_price")
	if !ok {
		return
	}

	q := &hotelService.RoomQuery{
		Pagination: handler.BindPagination(c),
		Type:       c.Query("type"),
		Status:     c.Query("status"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Keyword:    c.Query("keyword"),
	}

	list, total, err := h.roomService.List(c.Request.Context(), q)
	handler.MustSucceedPage(c, err, list, total, q.Page, q.PageSize)
}

// Types 房型列表
// @Summary 房型列表
// @Tags 客房
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/rooms/types [get]
func (h *RoomHandler) Types(c *gin.Context) {
	types, err := h.roomService.ListTypes(c.Request.Context())
	handler.MustSucceed(c, err, types)
}

// Available 指定日期可预订的客房
// @Summary 可预订客房
// @Tags 客房
// @Produce json
// @Param checkin query string true "入住日期 YYYY-MM-DD"
// @Param checkout query string true "退房日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=[]hotelService.RoomInfo}
// @Router /api/v1/rooms/available [get]
func (h *RoomHandler) Available(c *gin.Context) {
	checkin, checkout, ok := handler.ParseRequiredStay(c)
	if !ok {
		return
	}

	rooms, err := h.roomService.AvailableRooms(c.Request.Context(), checkin, checkout)
	handler.MustSucceed(c, err, rooms)
}

// Availability 检查单个客房在指定日期是否可用
// @Summary 检查客房可用性
// @Tags 客房
// @Produce json
// @Param id path int true "房间ID"
// @Param checkin query string true "入住日期 YYYY-MM-DD"
// @Param checkout query string true "退房日期 YYYY-MM-DD"
// @Param exclude_id query int false "忽略的预订ID"
// @Success 200 {object} response.Response{data=hotelService.AvailabilityResult}
// @Router /api/v1/rooms/{id}/availability [get]
func (h *RoomHandler) Availability(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}
	checkin, checkout, ok := handler.ParseRequiredStay(c)
	if !ok {
		return
	}
	excludeID, ok := handler.ParseQueryID(c, "exclude_id", "预订")
	if !ok {
		return
	}

	result, err := h.roomService.CheckAvailability(c.Request.Context(), id, checkin, checkout, excludeID)
	handler.MustSucceed(c, err, result)
}

// Stats 客房统计
// @Summary 客房统计
// @Tags 客房
// @Produce json
// @Success 200 {object} response.Response{data=hotelService.RoomStats}
// @Router /api/v1/rooms/stats [get]
func (h *RoomHandler) Stats(c *gin.Context) {
	stats, err := h.roomService.Stats(c.Request.Context())
	handler.MustSucceed(c, err, stats)
}

// Reservations 客房的预订记录
// @Summary 客房的预订记录
// @Tags 客房
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=[]models.Reservation}
// @Router /api/v1/rooms/{id}/reservations [get]
func (h *RoomHandler) Reservations(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.roomService.Get(ctx, id); handler.HandleError(c, err) {
		return
	}
	list, err := h.reservationService.ListByRoom(ctx, id)
	handler.MustSucceed(c, err, list)
}

// RegisterRoutes 注册客房路由
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup) {
	rooms := r.Group("/rooms")
	{
		rooms.POST("", h.Create)
		rooms.GET("", h.List)
		rooms.GET("/types", h.Types)
		rooms.GET("/available", h.Available)
		rooms.GET("/stats", h.Stats)
		rooms.GET("/:id", h.Get)
		rooms.PUT("/:id", h.Update)
		rooms.DELETE("/:id", h.Delete)
		rooms.GET("/:id/availability", h.Availability)
		rooms.GET("/:id/reservations", h.Reservations)
	}
}
