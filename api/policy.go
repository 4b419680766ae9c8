package api

import (
	"errors"

	"github.com/extortion-watch/extortion-report-api/models"
)

// ErrForbidden is returned when a session is authenticated but not
// entitled to the requested operation.
var ErrForbidden = errors.New("forbidden")

// RequireRole checks that the session carries the given user type.
func RequireRole(sess models.Session, userType string) error {
	if sess.UserType != userType {
		return ErrForbidden
	}
	return nil
}

// RequireOwner checks that the session user owns the resource.
func RequireOwner(sess models.Session, ownerUserID string) error {
	if sess.UserID != ownerUserID {
		return ErrForbidden
	}
	return nil
}
