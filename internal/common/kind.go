package common

import (
	"errors"
	"net/http"
)

// Kind is the category of failure reported to the transport layer.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindUpstream
	KindInternal
)

var kindNames = map[Kind]string{
	KindNone:         "none",
	KindValidation:   "validation",
	KindConflict:     "conflict",
	KindNotFound:     "not_found",
	KindUnauthorized: "unauthorized",
	KindUpstream:     "upstream_failure",
	KindInternal:     "internal",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// KindOf classifies err. Unknown errors are Internal; nil is KindNone.
// Token and store level sentinels collapse onto the kind the session layer
// would report for them.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateKey):
		return KindConflict
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return KindUnauthorized
	case errors.Is(err, ErrUploadFailed):
		return KindUpstream
	default:
		return KindInternal
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the client-safe text for the kind. It never contains the
// wrapped error chain.
func (k Kind) PublicMessage() string {
	switch k {
	case KindNone:
		return "ok"
	case KindValidation:
		return ErrValidation.Error()
	case KindConflict:
		return ErrConflict.Error()
	case KindNotFound:
		return "user does not exist"
	case KindUnauthorized:
		return ErrorUnauthorized.Error()
	case KindUpstream:
		return ErrUploadFailed.Error()
	default:
		return ErrorInternal.Error()
	}
}
