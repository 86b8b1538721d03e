package grpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", common.ErrValidation, codes.InvalidArgument},
		{"conflict", fmt.Errorf("register: %w", common.ErrConflict), codes.AlreadyExists},
		{"not found", common.ErrorNotFound, codes.NotFound},
		{"unauthorized", common.ErrTokenExpired, codes.Unauthenticated},
		{"upload", common.ErrUploadFailed, codes.Unavailable},
		{"internal", errors.New("db error: password=hunter2"), codes.Internal},
		{"status passthrough", status.Error(codes.DeadlineExceeded, "slow"), codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ToStatus(tt.err)
			assert.Equal(t, tt.want, st.Code())
			assert.NotContains(t, st.Message(), "hunter2")
		})
	}

	assert.Nil(t, ToStatus(nil))
}
