package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// LoginInput identifies the user by username, email or both.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

func (s *SessionManager) Login(ctx context.Context, in LoginInput) (res *Result, err error) {
	defer s.observe(ctx, "login", time.Now(), &err)

	username := models.NormalizeUsername(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, reject("LOGIN_INVALID", common.ErrValidation, "field", "username or email")
	}

	user, err := s.users().FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifyDummy(in.Password)
			return nil, reject("LOGIN_UNKNOWN_USER", common.ErrorNotFound)
		}
		return nil, failure("LOGIN_LOOKUP_FAILED", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, failure("LOGIN_VERIFY_FAILED", err, "user_id", user.ID)
	}
	if !ok {
		return nil, reject("LOGIN_BAD_CREDENTIALS", common.ErrorUnauthorized, "user_id", user.ID)
	}

	access, refresh, err := s.issuePair(user.ID)
	if err != nil {
		return nil, failure("LOGIN_TOKEN_FAILED", err, "user_id", user.ID)
	}

	// overwriting the stored token ends any earlier refresh chain
	if err := s.users().SetRefreshToken(ctx, user.ID, refresh.Value); err != nil {
		return nil, failure("LOGIN_STORE_FAILED", err, "user_id", user.ID)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)

	return &Result{
		Status: http.StatusOK,
		Payload: &LoginPayload{
			User:         user.Public(),
			AccessToken:  access.Value,
			RefreshToken: refresh.Value,
		},
		Message: "User logged in successfully",
		Cookies: sessionCookies(access.Value, refresh.Value, access.ExpiresAt, refresh.ExpiresAt),
	}, nil
}

// Refresh rotates the refresh token. The presented token must be the one
// currently stored for its subject; a rotated-out token is rejected, and of
// two concurrent refreshes with the same token only one succeeds.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (res *Result, err error) {
	defer s.observe(ctx, "refresh", time.Now(), &err)

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, reject("REFRESH_MISSING_TOKEN", common.ErrorUnauthorized)
	}

	userID, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, reject("REFRESH_INVALID_TOKEN", common.ErrorUnauthorized, "reason", err.Error())
	}

	repo := s.users()
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject("REFRESH_UNKNOWN_USER", common.ErrorUnauthorized, "user_id", userID)
		}
		return nil, failure("REFRESH_LOOKUP_FAILED", err, "user_id", userID)
	}

	if subtle.ConstantTimeCompare([]byte(refreshToken), []byte(user.RefreshToken)) != 1 {
		s.log.Warn(ctx, "refresh token reuse or mismatch", "user_id", userID)
		return nil, reject("REFRESH_TOKEN_MISMATCH", common.ErrorUnauthorized, "user_id", userID)
	}

	access, refresh, err := s.issuePair(userID)
	if err != nil {
		return nil, failure("REFRESH_TOKEN_FAILED", err, "user_id", userID)
	}

	swapped, err := repo.SwapRefreshToken(ctx, userID, refreshToken, refresh.Value)
	if err != nil {
		return nil, failure("REFRESH_STORE_FAILED", err, "user_id", userID)
	}
	if !swapped {
		return nil, reject("REFRESH_LOST_RACE", common.ErrorUnauthorized, "user_id", userID)
	}

	return &Result{
		Status: http.StatusOK,
		Payload: &TokenPayload{
			AccessToken:  access.Value,
			RefreshToken: refresh.Value,
		},
		Message: "Access token refreshed",
		Cookies: sessionCookies(access.Value, refresh.Value, access.ExpiresAt, refresh.ExpiresAt),
	}, nil
}

// Logout clears the stored refresh token. Repeating it is a no-op success.
// Access tokens already handed out stay valid until they expire.
func (s *SessionManager) Logout(ctx context.Context, userID string) (res *Result, err error) {
	defer s.observe(ctx, "logout", time.Now(), &err)

	if err := s.users().SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject("LOGOUT_UNKNOWN_USER", common.ErrorNotFound, "user_id", userID)
		}
		return nil, failure("LOGOUT_STORE_FAILED", err, "user_id", userID)
	}

	return &Result{
		Status:  http.StatusOK,
		Message: "User logged out",
		Cookies: []CookieDirective{
			clearCookie(common.AccessTokenCookieName),
			clearCookie(common.RefreshTokenCookieName),
		},
	}, nil
}

// Authenticate resolves an access token to the ID of an existing user.
func (s *SessionManager) Authenticate(ctx context.Context, accessToken string) (userID string, err error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, "Bearer "))
	if accessToken == "" {
		return "", reject("AUTH_MISSING_TOKEN", common.ErrorUnauthorized)
	}

	userID, err = s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return "", reject("AUTH_INVALID_TOKEN", common.ErrorUnauthorized, "reason", err.Error())
	}

	if _, err := s.users().FindByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", reject("AUTH_UNKNOWN_USER", common.ErrorUnauthorized, "user_id", userID)
		}
		return "", failure("AUTH_LOOKUP_FAILED", err, "user_id", userID)
	}
	return userID, nil
}

func (s *SessionManager) issuePair(userID string) (access, refresh auth.Token, err error) {
	access, err = s.issuer.IssueAccessToken(userID)
	if err != nil {
		return auth.Token{}, auth.Token{}, err
	}
	refresh, err = s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return auth.Token{}, auth.Token{}, err
	}
	return access, refresh, nil
}
