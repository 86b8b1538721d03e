// Package common defines shared constants and sentinel errors used across
// accountkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// Service-level error kinds. Every session operation surfaces exactly one of these.
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("user with this email or username already exists")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrUploadFailed   = errors.New("upload failed")
	ErrorInternal     = errors.New("internal error")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
