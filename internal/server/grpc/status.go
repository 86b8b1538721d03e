package grpc

import (
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var kindCodes = map[common.Kind]codes.Code{
	common.KindValidation:   codes.InvalidArgument,
	common.KindConflict:     codes.AlreadyExists,
	common.KindNotFound:     codes.NotFound,
	common.KindUnauthorized: codes.Unauthenticated,
	common.KindUpstream:     codes.Unavailable,
	common.KindInternal:     codes.Internal,
}

// ToStatus maps err onto a status whose message is the fixed public text of
// its kind. Errors that already are statuses pass through.
func ToStatus(err error) *status.Status {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return st
	}
	kind := common.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		code = codes.Internal
	}
	return status.New(code, kind.PublicMessage())
}
