package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/handler"
	"github.com/dumeirei/hotel-booking-core/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
)

// ReservationHandler 预订处理器
type ReservationHandler struct {
	bookingService     *hotelService.BookingService
	reservationService *hotelService.ReservationService
	qrGenerator        *qrcode.Generator
}

// NewReservationHandler 创建预订处理器
func NewReservationHandler(
	bookingSvc *hotelService.BookingService,
	reservationSvc *hotelService.ReservationService,
	qrGenerator *qrcode.Generator,
) *ReservationHandler {
	if qrGenerator == nil {
		qrGenerator = qrcode.NewGenerator()
	}
	return &ReservationHandler{
		bookingService:     bookingSvc,
		reservationService: reservationSvc,
		qrGenerator:        qrGenerator,
	}
}

// Book 创建预订
// @Summary 创建预订
// @Description 校验客人、房间与日期后创建预订，房间置为已入住
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body hotelService.BookingRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Reservation}
// @Failure 409 {object} response.Response "日期冲突"
// @Router /api/v1/reservations [post]
func (h *ReservationHandler) Book(c *gin.Context) {
	var req hotelService.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	reservation, err := h.bookingService.Book(c.Request.Context(), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Created(c, reservation)
}

// Validate 预订预校验
// @Summary 预订预校验
// @Description 只校验不落库，业务规则失败时 valid=false 并给出原因
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body hotelService.BookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.ValidationResult}
// @Router /api/v1/reservations/validate [post]
func (h *ReservationHandler) Validate(c *gin.Context) {
	var req hotelService.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.bookingService.ValidateBooking(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// Quote 预订报价
// @Summary 预订报价
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body hotelService.QuoteRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.Quote}
// @Router /api/v1/reservations/quote [post]
func (h *ReservationHandler) Quote(c *gin.Context) {
	var req hotelService.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	quote, err := h.bookingService.Quote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

// Rebook 修改预订
// @Summary 修改预订
// @Tags 预订
// @Accept json
// @Produce json
// @Param id path int true "预订ID"
// @Param request body hotelService.BookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/{id} [put]
func (h *ReservationHandler) Rebook(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req hotelService.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	reservation, err := h.bookingService.Rebook(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, reservation)
}

// Cancel 取消预订
// @Summary 取消预订
// @Tags 预订
// @Produce json
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response
// @Router /api/v1/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), id); handler.HandleError(c, err) {
		return
	}
	response.SuccessWithMessage(c, "预订已取消", nil)
}

// CheckIn 办理入住
// @Summary 办理入住
// @Tags 预订
// @Produce json
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	reservation, err := h.bookingService.CheckIn(c.Request.Context(), id)
	handler.MustSucceed(c, err, reservation)
}

// CheckOut 办理退房
// @Summary 办理退房
// @Tags 预订
// @Produce json
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	reservation, err := h.bookingService.CheckOut(c.Request.Context(), id)
	handler.MustSucceed(c, err, reservation)
}

// Get 获取预订详情
// @Summary 获取预订详情
// @Tags 预订
// @Produce json
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/{id} [get]
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	reservation, err := h.reservationService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, reservation)
}

// GetByNo 根据预订号获取预订
// @Summary 根据预订号获取预订
// @Tags 预订
// @Produce json
// @Param no path string true "预订号"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/no/{no} [get]
func (h *ReservationHandler) GetByNo(c *gin.Context) {
	no := c.Param("no")
	if !utils.IsReservationNo(no) {
		handler.HandleError(c, errors.ErrReservationNotFound)
		return
	}
	reservation, err := h.reservationService.GetByNo(c.Request.Context(), no)
	handler.MustSucceed(c, err, reservation)
}

// List 预订列表
// @Summary 预订列表
// @Tags 预订
// @Produce json
// @Param guest_id query int false "客人ID"
// @Param room_id query int false "房间ID"
// @Param period query string false "active/future/past"
// @Param guest_name query string false "客人姓名"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	guestID, ok := handler.ParseQueryID(c, "guest_id", "客人")
	if !ok {
		return
	}
	roomID, ok := handler.ParseQueryID(c, "room_id", "房间")
	if !ok {
		return
	}
	period := c.Query("period")
	switch period {
	case "", repository.PeriodActive, repository.PeriodFuture, repository.PeriodPast:
	default:
		response.BadRequest(c, "无效的时间范围: "+period)
		return
	}

	q := &hotelService.ReservationQuery{
		Pagination: handler.BindPagination(c),
		GuestID:    guestID,
		RoomID:     roomID,
		Period:     period,
		GuestName:  c.Query("guest_name"),
	}

	list, total, err := h.reservationService.List(c.Request.Context(), q)
	handler.MustSucceedPage(c, err, list, total, q.Page, q.PageSize)
}

// Range 与日期区间有交集的预订
// @Summary 区间内的预订
// @Tags 预订
// @Produce json
// @Param checkin query string true "开始日期 YYYY-MM-DD"
// @Param checkout query string true "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=[]models.Reservation}
// @Router /api/v1/reservations/range [get]
func (h *ReservationHandler) Range(c *gin.Context) {
	from, to, ok := handler.ParseRequiredStay(c)
	if !ok {
		return
	}

	list, err := h.reservationService.ListInRange(c.Request.Context(), from, to)
	handler.MustSucceed(c, err, list)
}

// Stats 预订统计
// @Summary 预订统计
// @Tags 预订
// @Produce json
// @Success 200 {object} response.Response{data=hotelService.ReservationStats}
// @Router /api/v1/reservations/stats [get]
func (h *ReservationHandler) Stats(c *gin.Context) {
	stats, err := h.reservationService.Stats(c.Request.Context())
	handler.MustSucceed(c, err, stats)
}

// ConfirmationCode 预订确认码
type ConfirmationCode struct {
	ReservationNo string `json:"reservation_no"`
	Payload       string `json:"payload"`
	Image         string `json:"image"` // PNG data URL
}

// QRCode 生成预订确认二维码
// @Summary 预订确认二维码
// @Tags 预订
// @Produce json
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=ConfirmationCode}
// @Router /api/v1/reservations/{id}/qrcode [get]
func (h *ReservationHandler) QRCode(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	reservation, err := h.reservationService.Get(c.Request.Context(), id)
	if handler.HandleError(c, err) {
		return
	}

	payload := qrcode.ConfirmationPayload(reservation.ReservationNo, roomNoOf(reservation),
		reservation.CheckinDate, reservation.CheckoutDate)
	image, err := h.qrGenerator.GenerateDataURL(payload)
	if err != nil {
		response.InternalError(c, "生成二维码失败")
		return
	}
	response.Success(c, &ConfirmationCode{
		ReservationNo: reservation.ReservationNo,
		Payload:       payload,
		Image:         image,
	})
}

// VerifyRequest 确认码核验请求
type VerifyRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// Verify 核验确认码并返回对应预订
// @Summary 核验确认码
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/v1/reservations/verify [post]
func (h *ReservationHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	conf, err := qrcode.ParseConfirmation(req.Payload)
	if err != nil {
		response.BadRequest(c, "无效的确认码")
		return
	}

	reservation, err := h.reservationService.GetByNo(c.Request.Context(), conf.ReservationNo)
	if handler.HandleError(c, err) {
		return
	}
	if !conf.Matches(roomNoOf(reservation), reservation.CheckinDate, reservation.CheckoutDate) {
		response.BadRequest(c, "确认码已失效，请重新获取")
		return
	}
	response.Success(c, reservation)
}

// RegisterRoutes 注册预订路由
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup) {
	reservations := r.Group("/reservations")
	{
		reservations.POST("", h.Book)
		reservations.GET("", h.List)
		reservations.POST("/validate", h.Validate)
		reservations.POST("/quote", h.Quote)
		reservations.POST("/verify", h.Verify)
		reservations.GET("/range", h.Range)
		reservations.GET("/stats", h.Stats)
		reservations.GET("/no/:no", h.GetByNo)
		reservations.GET("/:id", h.Get)
		reservations.PUT("/:id", h.Rebook)
		reservations.DELETE("/:id", h.Cancel)
		reservations.POST("/:id/check-in", h.CheckIn)
		reservations.POST("/:id/check-out", h.CheckOut)
		reservations.GET("/:id/qrcode", h.QRCode)
	}
}

func roomNoOf(r *models.Reservation) string {
	if r.Room == nil {
		return ""
	}
	return r.Room.RoomNo
}
