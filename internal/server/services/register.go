package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/google/uuid"
)

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
	Uploads  models.UploadBundle
}

func (in RegisterInput) missingField() string {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return "fullName"
	case strings.TrimSpace(in.Email) == "":
		return "email"
	case strings.TrimSpace(in.Username) == "":
		return "username"
	case in.Password == "":
		return "password"
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. Avatar upload is mandatory, a failed cover upload
// leaves the cover empty. No record is left behind on any failure path, and
// staged files are released whatever the outcome.
func (s *SessionManager) Register(ctx context.Context, in RegisterInput) (res *Result, err error) {
	defer s.observe(ctx, "register", time.Now(), &err)
	defer releaseBundle(in.Uploads)

	if field := in.missingField(); field != "" {
		return nil, reject("REGISTER_INVALID", common.ErrValidation, "field", field)
	}

	username := models.NormalizeUsername(in.Username)
	email := normalizeEmail(in.Email)

	repo := s.users()
	_, err = repo.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return nil, reject("REGISTER_CONFLICT", common.ErrConflict, "username", username)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, failure("REGISTER_LOOKUP_FAILED", err)
	}

	if !in.Uploads.HasAvatar() {
		return nil, reject("REGISTER_INVALID", common.ErrValidation, "field", "avatar")
	}

	avatarURL, err := s.uploader.Upload(ctx, in.Uploads.Avatar)
	if err != nil {
		return nil, failure("REGISTER_AVATAR_UPLOAD_FAILED", err)
	}

	var coverURL string
	if in.Uploads.HasCoverImage() {
		coverURL, err = s.uploader.Upload(ctx, in.Uploads.CoverImage)
		if err != nil {
			s.log.Warn(ctx, "cover image upload failed, registering without cover", "error", err)
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, failure("REGISTER_HASH_FAILED", err)
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.Users(tx)
		if _, err := txRepo.Create(ctx, &models.User{
			ID:           uuid.NewString(),
			Username:     username,
			Email:        email,
			FullName:     strings.TrimSpace(in.FullName),
			PasswordHash: hash,
			Avatar:       avatarURL,
			CoverImage:   coverURL,
		}); err != nil {
			return err
		}
		u, err := txRepo.FindByUsernameOrEmail(ctx, username, "")
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, reject("REGISTER_CONFLICT", common.ErrConflict, "username", username)
		}
		return nil, failure("REGISTER_STORE_FAILED", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)

	return &Result{
		Status:  http.StatusCreated,
		Payload: created.Public(),
		Message: "User registered successfully",
	}, nil
}

// releaseBundle removes whatever staged files are still on disk. The uploader
// releases the files it consumed; this catches the ones it never saw.
func releaseBundle(b models.UploadBundle) {
	_ = filex.Remove(b.Avatar)
	_ = filex.Remove(b.CoverImage)
}
