package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-core/internal/common/cache"
	"github.com/dumeirei/hotel-booking-core/internal/common/config"
	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	commonMiddleware "github.com/dumeirei/hotel-booking-core/internal/common/middleware"
	"github.com/dumeirei/hotel-booking-core/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
	hotelHandler "github.com/dumeirei/hotel-booking-core/internal/handler/hotel"
	"github.com/dumeirei/hotel-booking-core/internal/middleware"
	"github.com/dumeirei/hotel-booking-core/internal/repository"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// services 组装完成的业务服务
type services struct {
	guests       *hotelService.GuestService
	rooms        *hotelService.RoomService
	reservations *hotelService.ReservationService
	bookings     *hotelService.BookingService
}

// newServices 初始化仓储与业务服务
func newServices(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher hotelService.Publisher,
	m *metrics.Metrics,
) *services {
	booking := &cfg.Business.Booking
	clock := hotelService.NewClock(booking.Location())

	guestRepo := repository.NewGuestRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	reservationRepo := repository.NewReservationRepository(db)

	validator := hotelService.NewInputValidator()
	engine := hotelService.NewAvailabilityEngine(reservationRepo, roomRepo)
	events := hotelService.NewEventPublisher(publisher, cfg.MQTT.TopicPrefix, m)

	// 多实例部署时房间锁需放到 Redis
	var locker hotelService.RoomLocker
	if booking.LockBackend == hotelService.LockBackendRedis && redisClient != nil {
		locker = hotelService.NewRedisRoomLocker(cache.NewLocker(redisClient),
			booking.LockTTLDuration(), booking.LockWaitDuration(), m)
	} else {
		if booking.LockBackend == hotelService.LockBackendRedis {
			logger.Warn("Redis 未启用，房间锁回退为进程内锁")
		}
		locker = hotelService.NewLocalRoomLocker(booking.LockWaitDuration(), m)
	}

	reservations := hotelService.NewReservationService(db, guestRepo, roomRepo, reservationRepo, engine, locker, events, clock)
	return &services{
		guests:       hotelService.NewGuestService(guestRepo, reservationRepo, validator, booking.VIPDiscountRate, clock),
		rooms:        hotelService.NewRoomService(roomRepo, reservationRepo, engine, validator, clock),
		reservations: reservations,
		bookings:     hotelService.NewBookingService(guestRepo, roomRepo, engine, reservations, validator, m, clock),
	}
}

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	m *metrics.Metrics,
	svc *services,
) {
	guestH := hotelHandler.NewGuestHandler(svc.guests, svc.reservations)
	roomH := hotelHandler.NewRoomHandler(svc.rooms, svc.reservations)
	reservationH := hotelHandler.NewReservationHandler(svc.bookings, svc.reservations, qrcode.NewGenerator())

	probes := []string{"/health", "/ping", "/ready", cfg.Metrics.Path}

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestSizeLimiter(maxBodyBytes))
	r.Use(middleware.CORS(middleware.CORSFromConfig(&cfg.CORS)))
	r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		SkipPaths:   probes,
	}))
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(middleware.Logging(&middleware.LoggingConfig{Logger: logger, SkipPaths: probes}))

	// 健康检查
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	if m != nil && cfg.Metrics.Path != "" {
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled && redisClient != nil {
		v1.Use(middleware.PerMinute(redisClient, logger, "api", cfg.RateLimit.RequestsPerMinute))
	}
	{
		guestH.RegisterRoutes(v1)
		roomH.RegisterRoutes(v1)
		reservationH.RegisterRoutes(v1)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})
}
