package auth

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidLogin is returned when the submitted identity or role is rejected.
var ErrInvalidLogin = errors.New("auth: invalid login")

// LoginRequest carries the sign-in form fields.
type LoginRequest struct {
	Identity string `validate:"required,max=128"`
	Role     string `validate:"required,role"`
}

// SafeNext returns next when it is a local absolute path, else fallback.
func SafeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}
