package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

func (s *SessionManager) CurrentUser(ctx context.Context, userID string) (res *Result, err error) {
	defer s.observe(ctx, "current_user", time.Now(), &err)

	user, err := s.findUser(ctx, "CURRENT_USER", userID)
	if err != nil {
		return nil, err
	}
	return &Result{Status: http.StatusOK, Payload: user.Public(), Message: "User fetched successfully"}, nil
}

// ChangePassword replaces the password hash after checking the old password.
// Outstanding tokens are not revoked.
func (s *SessionManager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (res *Result, err error) {
	defer s.observe(ctx, "change_password", time.Now(), &err)

	if oldPassword == "" || newPassword == "" {
		return nil, reject("CHANGE_PASSWORD_INVALID", common.ErrValidation, "user_id", userID)
	}

	user, err := s.findUser(ctx, "CHANGE_PASSWORD", userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return nil, failure("CHANGE_PASSWORD_VERIFY_FAILED", err, "user_id", userID)
	}
	if !ok {
		return nil, reject("CHANGE_PASSWORD_BAD_CREDENTIALS", common.ErrorUnauthorized, "user_id", userID)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, failure("CHANGE_PASSWORD_HASH_FAILED", err, "user_id", userID)
	}

	if _, err := s.users().UpdateFields(ctx, userID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return nil, s.updateFailure("CHANGE_PASSWORD", userID, err)
	}

	s.log.Info(ctx, "password changed", "user_id", userID)
	return &Result{Status: http.StatusOK, Message: "Password changed successfully"}, nil
}

// UpdateProfile sets full name and email; both are required.
func (s *SessionManager) UpdateProfile(ctx context.Context, userID, fullName, email string) (res *Result, err error) {
	defer s.observe(ctx, "update_profile", time.Now(), &err)

	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, reject("UPDATE_PROFILE_INVALID", common.ErrValidation, "user_id", userID)
	}

	user, err := s.users().UpdateFields(ctx, userID, models.UserPatch{FullName: &fullName, Email: &email})
	if err != nil {
		return nil, s.updateFailure("UPDATE_PROFILE", userID, err)
	}
	return &Result{Status: http.StatusOK, Payload: user.Public(), Message: "Account details updated successfully"}, nil
}

func (s *SessionManager) UpdateAvatar(ctx context.Context, userID, localPath string) (*Result, error) {
	return s.updateImage(ctx, "update_avatar", userID, localPath, func(p *models.UserPatch, url string) {
		p.Avatar = &url
	})
}

func (s *SessionManager) UpdateCoverImage(ctx context.Context, userID, localPath string) (*Result, error) {
	return s.updateImage(ctx, "update_cover_image", userID, localPath, func(p *models.UserPatch, url string) {
		p.CoverImage = &url
	})
}

// updateImage uploads first and writes the record only once the URL exists,
// so a failed upload changes nothing.
func (s *SessionManager) updateImage(ctx context.Context, operation, userID, localPath string,
	apply func(*models.UserPatch, string)) (res *Result, err error) {
	defer s.observe(ctx, operation, time.Now(), &err)
	code := strings.ToUpper(operation)

	if localPath == "" {
		return nil, reject(code+"_INVALID", common.ErrValidation, "user_id", userID)
	}

	if _, err := s.findUser(ctx, code, userID); err != nil {
		_ = filex.Remove(localPath)
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, failure(code+"_UPLOAD_FAILED", err, "user_id", userID)
	}

	var patch models.UserPatch
	apply(&patch, url)

	user, err := s.users().UpdateFields(ctx, userID, patch)
	if err != nil {
		return nil, s.updateFailure(code, userID, err)
	}
	return &Result{Status: http.StatusOK, Payload: user.Public(), Message: "Image updated successfully"}, nil
}

func (s *SessionManager) findUser(ctx context.Context, code, userID string) (*models.User, error) {
	user, err := s.users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(code+"_UNKNOWN_USER", common.ErrorNotFound, "user_id", userID)
		}
		return nil, failure(code+"_LOOKUP_FAILED", err, "user_id", userID)
	}
	return user, nil
}

func (s *SessionManager) updateFailure(code, userID string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return reject(code+"_UNKNOWN_USER", common.ErrorNotFound, "user_id", userID)
	case errors.Is(err, common.ErrDuplicateKey):
		return reject(code+"_CONFLICT", common.ErrConflict, "user_id", userID)
	}
	return failure(code+"_STORE_FAILED", err, "user_id", userID)
}
