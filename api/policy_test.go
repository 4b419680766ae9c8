package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/extortion-watch/extortion-report-api/api"
	"github.com/extortion-watch/extortion-report-api/models"
)

func TestRequireRole(t *testing.T) {
	officer := models.Session{UserID: "u1", UserType: models.UserTypeLawEnforcement}
	citizen := models.Session{UserID: "u2", UserType: models.UserTypeCitizen}

	assert.NoError(t, api.RequireRole(officer, models.UserTypeLawEnforcement))
	assert.ErrorIs(t, api.RequireRole(citizen, models.UserTypeLawEnforcement), api.ErrForbidden)
	assert.ErrorIs(t, api.RequireRole(officer, models.UserTypeCitizen), api.ErrForbidden)
}

func TestRequireOwner(t *testing.T) {
	sess := models.Session{UserID: "u1", UserType: models.UserTypeCitizen}

	assert.NoError(t, api.RequireOwner(sess, "u1"))
	assert.ErrorIs(t, api.RequireOwner(sess, "u2"), api.ErrForbidden)
}
