package services

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Result is what an operation hands back to the transport layer.
type Result struct {
	Status  int
	Payload any
	Message string
	Cookies []CookieDirective
}

type LoginPayload struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

type TokenPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CookieDirective tells the transport to set or clear a cookie. Session
// cookies are always HTTP-only and secure.
type CookieDirective struct {
	Name     string
	Value    string
	HTTPOnly bool
	Secure   bool
	Expires  time.Time
	Clear    bool
}

func setCookie(name, value string, expires time.Time) CookieDirective {
	return CookieDirective{Name: name, Value: value, HTTPOnly: true, Secure: true, Expires: expires}
}

func clearCookie(name string) CookieDirective {
	return CookieDirective{Name: name, HTTPOnly: true, Secure: true, Clear: true}
}

func sessionCookies(access, refresh string, accessExp, refreshExp time.Time) []CookieDirective {
	return []CookieDirective{
		setCookie(common.AccessTokenCookieName, access, accessExp),
		setCookie(common.RefreshTokenCookieName, refresh, refreshExp),
	}
}

// HTTPCookie renders the directive. Clear directives expire immediately.
func (c CookieDirective) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     "/",
		HttpOnly: c.HTTPOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if c.Clear {
		hc.Value = ""
		hc.MaxAge = -1
		hc.Expires = time.Unix(0, 0)
		return hc
	}
	hc.Expires = c.Expires
	return hc
}
