package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"validation", ErrValidation, KindValidation},
		{"wrapped validation", fmt.Errorf("register: %w", ErrValidation), KindValidation},
		{"conflict", ErrConflict, KindConflict},
		{"duplicate key", ErrDuplicateKey, KindConflict},
		{"not found", ErrorNotFound, KindNotFound},
		{"unauthorized", ErrorUnauthorized, KindUnauthorized},
		{"expired token", ErrTokenExpired, KindUnauthorized},
		{"invalid token", ErrInvalidToken, KindUnauthorized},
		{"upload", ErrUploadFailed, KindUpstream},
		{"internal", ErrorInternal, KindInternal},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_Status(t *testing.T) {
	assert.Equal(t, http.StatusOK, KindNone.Status())
	assert.Equal(t, http.StatusBadRequest, KindValidation.Status())
	assert.Equal(t, http.StatusConflict, KindConflict.Status())
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.Status())
	assert.Equal(t, http.StatusBadGateway, KindUpstream.Status())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.Status())
}

func TestKind_PublicMessageDoesNotLeakChain(t *testing.T) {
	err := fmt.Errorf("db error: password=hunter2: %w", ErrorInternal)
	msg := KindOf(err).PublicMessage()
	assert.Equal(t, "internal error", msg)
	assert.NotContains(t, msg, "hunter2")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "upstream_failure", KindUpstream.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
