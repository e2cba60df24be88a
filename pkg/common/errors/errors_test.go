package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflictError("username or email already exist", nil))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrUpload))
}

func TestAPIError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError("internal server error", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestUploadErrorSharesConflictStatus(t *testing.T) {
	err := NewUploadError("Avatar is required", nil)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, KindUpload, err.Kind)
}

func TestFromError(t *testing.T) {
	validation := NewValidationError("All fields are required", FieldError{Field: "email", Message: "is required"})

	tests := []struct {
		name   string
		in     error
		kind   Kind
		status int
	}{
		{"api error passes through", validation, KindValidation, http.StatusBadRequest},
		{"deadline", fmt.Errorf("insert: %w", context.DeadlineExceeded), KindTimeout, http.StatusServiceUnavailable},
		{"canceled", context.Canceled, KindTimeout, http.StatusServiceUnavailable},
		{"bind", hzte.New(errors.New("bad json"), hzte.ErrorTypeBind, nil), KindValidation, http.StatusBadRequest},
		{"unknown", errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.StatusCode)
		})
	}

	assert.Nil(t, FromError(nil))
	assert.Same(t, validation, FromError(validation))
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, KindTimeout, got.Kind)
	assert.ErrorIs(t, got, ErrTimeout)
	assert.NotErrorIs(t, got, ErrInternal)
}
