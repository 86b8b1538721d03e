// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// User is the stored identity record. PasswordHash and RefreshToken never
// leave the server; use Public for anything returned to a caller.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Avatar       string
	CoverImage   string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the sanitized form of User.
type PublicUser struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NormalizeUsername is the canonical stored form of a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	FullName     *string
	Email        *string
	Avatar       *string
	CoverImage   *string
	PasswordHash *string
}

func (p UserPatch) IsEmpty() bool {
	return p.FullName == nil && p.Email == nil && p.Avatar == nil && p.CoverImage == nil && p.PasswordHash == nil
}
