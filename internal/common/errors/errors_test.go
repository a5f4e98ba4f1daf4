// Package errors 错误码和错误处理单元测试
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== AppError 基础测试 ====================

func TestNew(t *testing.T) {
	err := New(1001, "参数错误")
	require.NotNil(t, err)
	assert.Equal(t, 1001, err.Code)
	assert.Equal(t, "参数错误", err.Message)
	assert.Equal(t, KindUnknown, err.Kind)
	assert.Nil(t, err.Err)
}

func TestWrap(t *testing.T) {
	originalErr := stderrors.New("database connection failed")
	err := Wrap(1004, "数据库错误", originalErr)

	require.NotNil(t, err)
	assert.Equal(t, 1004, err.Code)
	assert.Equal(t, originalErr, err.Err)
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{"无原始错误", New(1001, "参数错误"), "[1001] 参数错误"},
		{"带原始错误", Wrap(1004, "数据库错误", stderrors.New("connection timeout")), "[1004] 数据库错误: connection timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_WithMessageKeepsKind(t *testing.T) {
	modified := ErrReservationConflict.WithMessage("房间 101 已被预订")

	assert.Equal(t, 8002, modified.Code)
	assert.Equal(t, KindConflict, modified.Kind)
	assert.Equal(t, "房间 101 已被预订", modified.Message)
	assert.Equal(t, "房间在所选日期已被预订", ErrReservationConflict.Message)
}

func TestAppError_WithError(t *testing.T) {
	underlying := stderrors.New("disk full")
	modified := ErrDatabaseError.WithError(underlying)

	assert.Equal(t, KindStorageFailure, modified.Kind)
	assert.ErrorIs(t, modified, underlying)
	assert.Nil(t, ErrDatabaseError.Err)
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	derived := ErrGuestNotFound.WithMessagef("客人 %d 不存在", 42)
	wrapped := fmt.Errorf("lookup: %w", derived)

	assert.True(t, stderrors.Is(wrapped, ErrGuestNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrRoomNotFound))
}

// ==================== 错误类别测试 ====================

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"普通错误", stderrors.New("boom"), KindUnknown},
		{"参数错误", ErrStayDatesInvalid, KindInvalidArgument},
		{"不存在", ErrReservationNotFound, KindNotFound},
		{"冲突", ErrContactExists, KindConflict},
		{"前置条件", ErrGuestHasReservations, KindPreconditionFailed},
		{"存储失败", ErrDatabaseError.WithError(stderrors.New("io")), KindStorageFailure},
		{"内部状态", ErrOfferingInvalidState, KindInvalidState},
		{"包装后", fmt.Errorf("wrap: %w", ErrRoomNumberExists), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsBusinessError(t *testing.T) {
	assert.True(t, IsBusinessError(ErrReservationConflict))
	assert.True(t, IsBusinessError(ErrRoomHasReservations))
	assert.True(t, IsBusinessError(ErrCheckinInPast))
	assert.True(t, IsBusinessError(ErrGuestNotFound))
	assert.False(t, IsBusinessError(ErrDatabaseError))
	assert.False(t, IsBusinessError(stderrors.New("plain")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Conflict", KindConflict.String())
	assert.Equal(t, "PreconditionFailed", KindPreconditionFailed.String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

// ==================== 错误码常量测试 ====================

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"ErrInvalidParams", ErrInvalidParams, 1001},
		{"ErrDatabaseError", ErrDatabaseError, 1004},
		{"ErrGuestNotFound", ErrGuestNotFound, 3000},
		{"ErrContactExists", ErrContactExists, 3001},
		{"ErrRoomNotFound", ErrRoomNotFound, 4000},
		{"ErrRoomNumberExists", ErrRoomNumberExists, 4001},
		{"ErrReservationNotFound", ErrReservationNotFound, 8000},
		{"ErrReservationConflict", ErrReservationConflict, 8002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// ==================== 辅助函数测试 ====================

func TestGetAppError(t *testing.T) {
	t.Run("应用错误原样返回", func(t *testing.T) {
		got := GetAppError(fmt.Errorf("ctx: %w", ErrRoomNotFound))
		assert.Equal(t, 4000, got.Code)
	})

	t.Run("普通错误包装为未知错误", func(t *testing.T) {
		plain := stderrors.New("plain")
		got := GetAppError(plain)
		assert.Equal(t, 1000, got.Code)
		assert.Equal(t, plain, got.Err)
	})
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrNotFound))
	assert.False(t, IsAppError(stderrors.New("plain")))
	assert.False(t, IsAppError(nil))
}
