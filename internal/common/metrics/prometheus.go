// Package metrics 提供 Prometheus 指标收集
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标收集器
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
	bookingsTotal        *prometheus.CounterVec
	validationFailures   *prometheus.CounterVec
	reservationEvents    *prometheus.CounterVec
	roomLockWait         *prometheus.HistogramVec
	roomLockTimeouts     *prometheus.CounterVec
	mqttMessagesTotal    *prometheus.CounterVec
	roomsByStatus        *prometheus.GaugeVec
	guestsByType         *prometheus.GaugeVec
	activeReservations   prometheus.Gauge
	upcomingReservations prometheus.Gauge
	skipPath             string
}

var defaultMetrics *Metrics

// Init 在默认注册表上初始化指标收集器
func Init(namespace string) *Metrics {
	defaultMetrics = New(namespace, prometheus.DefaultRegisterer)
	return defaultMetrics
}

// New 在指定注册表上创建指标收集器
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "hotel_booking"
	}
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		bookingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_total",
				Help:      "Total number of booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_validation_failures_total",
				Help:      "Total number of rejected booking validations by reason code",
			},
			[]string{"code"},
		),
		reservationEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reservation_events_total",
				Help:      "Total number of reservation lifecycle events",
			},
			[]string{"type"},
		),
		roomLockWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "room_lock_wait_seconds",
				Help:      "Time spent waiting for a per-room lock",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
			},
			[]string{"backend"},
		),
		roomLockTimeouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "room_lock_timeouts_total",
				Help:      "Total number of per-room lock acquisitions that timed out",
			},
			[]string{"backend"},
		),
		mqttMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mqtt_messages_total",
				Help:      "Total number of MQTT messages",
			},
			[]string{"topic", "direction"},
		),
		roomsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rooms",
				Help:      "Number of rooms by status",
			},
			[]string{"status"},
		),
		guestsByType: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "guests",
				Help:      "Number of guests by type",
			},
			[]string{"type"},
		),
		activeReservations: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reservations_active",
				Help:      "Number of reservations currently in house",
			},
		),
		upcomingReservations: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reservations_upcoming",
				Help:      "Number of reservations with a future check-in",
			},
		),
		skipPath: "/metrics",
	}
}

// GetMetrics 获取默认指标收集器
func GetMetrics() *Metrics {
	if defaultMetrics == nil {
		return Init("")
	}
	return defaultMetrics
}

// SetSkipPath 设置中间件忽略的指标端点
func (m *Metrics) SetSkipPath(path string) {
	if path != "" {
		m.skipPath = path
	}
}

// Middleware 返回 Gin 中间件
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == m.skipPath {
			c.Next()
			return
		}

		start := time.Now()
		m.httpRequestsInFlight.Inc()

		c.Next()

		m.httpRequestsInFlight.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// Handler 返回 Prometheus HTTP 处理器
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordBooking 记录预订结果，以下记录方法均允许 nil 接收者
func (m *Metrics) RecordBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// RecordValidationFailure 记录预订校验失败
func (m *Metrics) RecordValidationFailure(code string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(code).Inc()
}

// RecordReservationEvent 记录预订生命周期事件
func (m *Metrics) RecordReservationEvent(eventType string) {
	if m == nil {
		return
	}
	m.reservationEvents.WithLabelValues(eventType).Inc()
}

// ObserveLockWait 记录房间锁等待时间
func (m *Metrics) ObserveLockWait(backend string, d time.Duration) {
	if m == nil {
		return
	}
	m.roomLockWait.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordLockTimeout 记录房间锁超时
func (m *Metrics) RecordLockTimeout(backend string) {
	if m == nil {
		return
	}
	m.roomLockTimeouts.WithLabelValues(backend).Inc()
}

// RecordMQTTMessage 记录 MQTT 消息
func (m *Metrics) RecordMQTTMessage(topic, direction string) {
	if m == nil {
		return
	}
	m.mqttMessagesTotal.WithLabelValues(topic, direction).Inc()
}

// SetRoomsByStatus 设置各状态房间数，未出现的状态置零
func (m *Metrics) SetRoomsByStatus(counts map[string]int64) {
	if m == nil {
		return
	}
	m.roomsByStatus.Reset()
	for status, n := range counts {
		m.roomsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// SetGuestsByType 设置各类型客人数
func (m *Metrics) SetGuestsByType(counts map[string]int64) {
	if m == nil {
		return
	}
	m.guestsByType.Reset()
	for guestType, n := range counts {
		m.guestsByType.WithLabelValues(guestType).Set(float64(n))
	}
}

// SetReservationCounts 设置在住与未来预订数
func (m *Metrics) SetReservationCounts(active, upcoming int64) {
	if m == nil {
		return
	}
	m.activeReservations.Set(float64(active))
	m.upcomingReservations.Set(float64(upcoming))
}
