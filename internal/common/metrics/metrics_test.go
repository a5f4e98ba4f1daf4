// Package metrics 提供 Prometheus 指标收集单元测试
package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New("test", prometheus.NewRegistry())
}

func TestNew(t *testing.T) {
	m := newTestMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.httpRequestsTotal)
	assert.NotNil(t, m.bookingsTotal)
	assert.NotNil(t, m.roomsByStatus)
	assert.Equal(t, "/metrics", m.skipPath)
}

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	assert.Same(t, m, GetMetrics())
}

func TestMetrics_RecordBooking(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordBooking("created")
	m.RecordBooking("created")
	m.RecordBooking("rejected")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookingsTotal.WithLabelValues("rejected")))
}

func TestMetrics_RecordValidationFailure(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordValidationFailure("ROOM_UNAVAILABLE")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.validationFailures.WithLabelValues("ROOM_UNAVAILABLE")))
}

func TestMetrics_Lock(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveLockWait("local", 5*time.Millisecond)
	m.RecordLockTimeout("redis")
	m.RecordLockTimeout("redis")

	assert.Equal(t, 1, testutil.CollectAndCount(m.roomLockWait))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.roomLockTimeouts.WithLabelValues("redis")))
}

func TestMetrics_RecordEvents(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordReservationEvent("created")
	m.RecordMQTTMessage("hotel/reservations/created", "outbound")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.reservationEvents.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mqttMessagesTotal.WithLabelValues("hotel/reservations/created", "outbound")))
}

func TestMetrics_Gauges(t *testing.T) {
	m := newTestMetrics(t)

	m.SetRoomsByStatus(map[string]int64{"Available": 3, "Occupied": 1})
	assert.Equal(t, float64(3), testutil.ToFloat64(m.roomsByStatus.WithLabelValues("Available")))

	// 第二次刷新时旧状态被清除
	m.SetRoomsByStatus(map[string]int64{"Occupied": 2})
	assert.Equal(t, 1, testutil.CollectAndCount(m.roomsByStatus))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.roomsByStatus.WithLabelValues("Occupied")))

	m.SetGuestsByType(map[string]int64{"Regular": 4, "VIP": 1})
	assert.Equal(t, float64(1), testutil.ToFloat64(m.guestsByType.WithLabelValues("VIP")))

	m.SetReservationCounts(2, 5)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.activeReservations))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.upcomingReservations))
}

func TestMetrics_Middleware(t *testing.T) {
	m := newTestMetrics(t)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/rooms/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})

	t.Run("记录请求指标", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/rooms/12", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/rooms/:id", "200")))
	})

	t.Run("跳过/metrics端点", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/metrics", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/metrics", "200")))
	})
}

func TestHandler(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_")
}
