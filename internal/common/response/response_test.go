// Package response 统一响应格式单元测试
package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTest 创建测试用的 Gin 上下文
func setupTest() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// parseResponse 解析响应为 Response 结构
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := setupTest()

	Success(c, map[string]interface{}{"id": 1, "room_no": "101"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestSuccess_NilDataOmitted(t *testing.T) {
	c, w := setupTest()

	Success(c, nil)

	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestCreated(t *testing.T) {
	c, w := setupTest()

	Created(c, map[string]int{"id": 9})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "created", parseResponse(t, w).Message)
}

func TestSuccessWithMessage(t *testing.T) {
	c, w := setupTest()

	SuccessWithMessage(c, "预订已取消", nil)

	assert.Equal(t, "预订已取消", parseResponse(t, w).Message)
}

func TestSuccessPage(t *testing.T) {
	c, w := setupTest()

	SuccessPage(c, []string{"101", "102"}, 12, 2, 2)

	var resp struct {
		Code int      `json:"code"`
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, 2, resp.Data.PageSize)
	assert.Len(t, resp.Data.List, 2)
}

func TestError(t *testing.T) {
	c, w := setupTest()

	Error(c, http.StatusConflict, 8002, "房间在该日期已被预订")

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 8002, resp.Code)
	assert.Equal(t, "房间在该日期已被预订", resp.Message)
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *gin.Context)
		wantStatus int
		wantMsg    string
	}{
		{"BadRequest", func(c *gin.Context) { BadRequest(c, "参数错误") }, http.StatusBadRequest, "参数错误"},
		{"NotFound默认消息", func(c *gin.Context) { NotFound(c, "") }, http.StatusNotFound, "not found"},
		{"InternalError默认消息", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, "internal server error"},
		{"TooManyRequests默认消息", func(c *gin.Context) { TooManyRequests(c, "") }, http.StatusTooManyRequests, "too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTest()
			tt.call(c)
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseResponse(t, w)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestResponse_CarriesRequestID(t *testing.T) {
	c, w := setupTest()
	c.Set(ContextKeyRequestID, "req-42")

	Error(c, http.StatusConflict, 8002, "房间在所选日期已被预订")

	resp := parseResponse(t, w)
	assert.Equal(t, "req-42", resp.RequestID)

	c, w = setupTest()
	Success(c, nil)
	assert.NotContains(t, w.Body.String(), "request_id")
}
