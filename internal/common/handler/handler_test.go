package handler

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// 辅助函数：创建测试上下文
func createTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

// 辅助函数：解析响应
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ==================== 错误处理测试 ====================

func TestHandleError_NilError(t *testing.T) {
	c, _ := createTestContext("/")
	assert.False(t, HandleError(c, nil))
}

func TestHandleError_KindToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"参数错误", errors.ErrStayDatesInvalid, http.StatusBadRequest, 8005},
		{"不存在", errors.ErrGuestNotFound, http.StatusNotFound, 3000},
		{"冲突", errors.ErrReservationConflict, http.StatusConflict, 8002},
		{"前置条件", errors.ErrRoomHasReservations, http.StatusPreconditionFailed, 4003},
		{"存储失败", errors.ErrDatabaseError.WithError(stderrors.New("disk full")), http.StatusInternalServerError, 1004},
		{"包装后的业务错误", fmt.Errorf("book: %w", errors.ErrReservationConflict), http.StatusConflict, 8002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createTestContext("/")
			require.True(t, HandleError(c, tt.err))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)
		})
	}
}

func TestHandleError_PlainError(t *testing.T) {
	c, w := createTestContext("/")

	require.True(t, HandleError(c, stderrors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 500, resp.Code)
	assert.NotContains(t, resp.Message, "boom")
}

func TestMustSucceed(t *testing.T) {
	c, w := createTestContext("/")
	MustSucceed(c, nil, map[string]string{"room_no": "101"})
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = createTestContext("/")
	MustSucceed(c, errors.ErrRoomNotFound, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMustSucceedPage(t *testing.T) {
	c, w := createTestContext("/")
	MustSucceedPage(c, nil, []int{1, 2}, 2, 1, 10)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
}

// ==================== 参数解析测试 ====================

func TestParseID(t *testing.T) {
	tests := []struct {
		value  string
		wantOK bool
		wantID int64
	}{
		{"12", true, 12},
		{"abc", false, 0},
		{"0", false, 0},
		{"-3", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, w := createTestContext("/")
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, ok := ParseID(c, "房间")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, "无效的房间ID", parseResponse(t, w).Message)
			}
		})
	}
}

func TestParseQueryID(t *testing.T) {
	c, _ := createTestContext("/")
	id, ok := ParseQueryID(c, "guest_id", "客人")
	assert.True(t, ok)
	assert.Nil(t, id)

	c, _ = createTestContext("/?guest_id=5")
	id, ok = ParseQueryID(c, "guest_id", "客人")
	assert.True(t, ok)
	require.NotNil(t, id)
	assert.Equal(t, int64(5), *id)

	c, w := createTestContext("/?guest_id=x")
	_, ok = ParseQueryID(c, "guest_id", "客人")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryFloat(t *testing.T) {
	c, _ := createTestContext("/?min_price=99.5")
	f, ok := ParseQueryFloat(c, "min_price")
	assert.True(t, ok)
	require.NotNil(t, f)
	assert.Equal(t, 99.5, *f)

	c, w := createTestContext("/?min_price=cheap")
	_, ok = ParseQueryFloat(c, "min_price")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryDate(t *testing.T) {
	c, _ := createTestContext("/?date=2025-03-01")
	d, ok := ParseQueryDate(c, "date", "日期格式错误")
	assert.True(t, ok)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	c, w := createTestContext("/?date=03/01/2025")
	_, ok = ParseQueryDate(c, "date", "日期格式错误")
	assert.False(t, ok)
	assert.Equal(t, "日期格式错误", parseResponse(t, w).Message)
}

func TestParseRequiredStay(t *testing.T) {
	c, _ := createTestContext("/?checkin=2025-03-01&checkout=2025-03-05")
	checkin, checkout, ok := ParseRequiredStay(c)
	require.True(t, ok)
	assert.Equal(t, 4*24*time.Hour, checkout.Sub(checkin))

	c, w := createTestContext("/?checkin=2025-03-01")
	_, _, ok = ParseRequiredStay(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = createTestContext("/?checkin=2025-03-01&checkout=tomorrow")
	_, _, ok = ParseRequiredStay(c)
	assert.False(t, ok)
	assert.Equal(t, "无效的退房日期格式", parseResponse(t, w).Message)
}

func TestBindPagination(t *testing.T) {
	c, _ := createTestContext("/?page=3&page_size=500")
	p := BindPagination(c)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PageSize)

	c, _ = createTestContext("/")
	p = BindPagination(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.KindInvalidState))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.KindUnknown))
}
