// Package users is the credential store: persistence of user identity
// records with username and email uniqueness enforced by the database.
package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Repository is the credential store contract. Reads return the full record,
// password hash and refresh token included; callers outside the session
// layer must only ever see models.PublicUser.
type Repository interface {
	// FindByUsernameOrEmail returns the record whose username equals username
	// or whose email equals email. Empty arguments never match.
	// Returns common.ErrorNotFound when there is none.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)

	// FindByID returns common.ErrorNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// Create inserts user. A taken username or email fails with
	// common.ErrDuplicateKey and nothing is written.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// UpdateFields applies the non-nil fields of patch and returns the
	// updated record.
	UpdateFields(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)

	// SetRefreshToken overwrites the stored refresh token; "" clears it.
	SetRefreshToken(ctx context.Context, id, token string) error

	// SwapRefreshToken replaces the stored token with next only if it still
	// equals current. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
