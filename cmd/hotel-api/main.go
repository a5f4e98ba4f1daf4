// Package main 是应用程序入口
//
//	@title			Hotel Booking Core API
//	@version		1.0
//	@description	酒店客人、客房与预订管理接口
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-core/internal/common/cache"
	"github.com/dumeirei/hotel-booking-core/internal/common/config"
	"github.com/dumeirei/hotel-booking-core/internal/common/database"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-core/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-core/internal/models"
	"github.com/dumeirei/hotel-booking-core/internal/scheduler"
	hotelService "github.com/dumeirei/hotel-booking-core/internal/service/hotel"
	"github.com/dumeirei/hotel-booking-core/pkg/mqtt"
)

const version = "1.0.0"

func main() {
	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting Hotel Booking Core",
		zap.String("version", version),
		zap.String("env", cfg.Server.Mode),
	)

	// 初始化追踪
	tracer, err := tracing.Init(&tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Mode,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, models.AllModels()...); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Redis 为可选依赖，仅用于分布式房间锁和限流
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.Init(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Init(cfg.Metrics.Namespace)
		m.SetSkipPath(cfg.Metrics.Path)
	}

	// 预订事件发布，未启用 MQTT 时丢弃
	var publisher hotelService.Publisher = hotelService.NopPublisher{}
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = mqtt.NewClient(&cfg.MQTT, log)
		if err := mqttClient.Connect(); err != nil {
			log.Error("MQTT 连接失败，预订事件将不会发布", zap.Error(err))
		} else {
			publisher = mqttClient
		}
	}

	svc := newServices(cfg, log, db, redisClient, publisher, m)

	// 设置 Gin 模式
	switch {
	case cfg.IsRelease():
		gin.SetMode(gin.ReleaseMode)
	case cfg.IsDebug():
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.TestMode)
	}

	engine := gin.New()
	setupRouter(engine, cfg, log, db, redisClient, m, svc)

	// 定时刷新入住统计
	sched := scheduler.NewScheduler(log, 30*time.Second)
	scheduler.NewTaskHandler(svc.guests, svc.rooms, svc.reservations, m).
		Register(sched, cfg.Business.Booking.StatsIntervalDuration())
	sched.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	sched.Stop()

	if mqttClient != nil {
		mqttClient.Disconnect()
	}

	if err := tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	if sqlDB, _ := db.DB(); sqlDB != nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exited")
}
