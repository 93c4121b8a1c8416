package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carddemo/internal/session/models"
	"carddemo/internal/session/state"
)

func authenticated(role models.Role) state.Snapshot {
	return state.Snapshot{
		Status: state.StatusAuthenticated,
		User: &models.Identity{
			ID:       "U1",
			UserID:   "U1",
			Role:     role,
			IsActive: true,
		},
		Token: "at-1",
	}
}

func TestStoredTokenTriggersChecking(t *testing.T) {
	snap := state.Snapshot{Status: state.StatusAnonymous}
	decision := Decide(snap, true, true, Request{Path: "/accounts"})
	assert.Equal(t, OutcomeChecking, decision.Outcome)
}

func TestAuthenticatingKeepsChecking(t *testing.T) {
	snap := state.Snapshot{Status: state.StatusAuthenticating}
	decision := Decide(snap, true, true, Request{Path: "/accounts"})
	assert.Equal(t, OutcomeChecking, decision.Outcome)
}

func TestAnonymousWithoutTokenRedirectsToLogin(t *testing.T) {
	snap := state.Snapshot{Status: state.StatusAnonymous}
	decision := Decide(snap, false, true, Request{Path: "/accounts"})

	assert.Equal(t, OutcomeRedirectLogin, decision.Outcome)
	assert.Equal(t, models.LoginPath, decision.RedirectPath)
	assert.Equal(t, "/accounts", decision.ReturnTo, "original path preserved for post-login return")
}

func TestFailedValidationRedirectsToLogin(t *testing.T) {
	snap := state.Snapshot{Status: state.StatusError}
	decision := Decide(snap, true, true, Request{Path: "/accounts"})
	assert.Equal(t, OutcomeRedirectLogin, decision.Outcome)
}

func TestExpiredSessionRedirectsReplacingHistory(t *testing.T) {
	decision := Decide(authenticated(models.RoleAdmin), true, false, Request{Path: "/accounts"})

	assert.Equal(t, OutcomeRedirectLogin, decision.Outcome)
	assert.True(t, decision.ReplaceHistory)
}

func TestRoleMismatchRedirectsHomeNeverBlocks(t *testing.T) {
	t.Run("back-office user on an admin route lands on the main menu", func(t *testing.T) {
		decision := Decide(authenticated(models.RoleBackOffice), true, true, Request{
			Path:         "/admin/users",
			RequiredRole: models.RoleAdmin,
		})
		assert.Equal(t, OutcomeRedirectHome, decision.Outcome)
		assert.Equal(t, "/menu/main", decision.RedirectPath)
	})

	t.Run("admin on a back-office route lands on the admin menu", func(t *testing.T) {
		decision := Decide(authenticated(models.RoleAdmin), true, true, Request{
			Path:         "/transactions",
			RequiredRole: models.RoleBackOffice,
		})
		assert.Equal(t, OutcomeRedirectHome, decision.Outcome)
		assert.Equal(t, "/menu/admin", decision.RedirectPath)
	})
}

func TestMatchingRoleAllows(t *testing.T) {
	decision := Decide(authenticated(models.RoleAdmin), true, true, Request{
		Path:         "/admin/users",
		RequiredRole: models.RoleAdmin,
	})
	assert.Equal(t, OutcomeAllow, decision.Outcome)
}

func TestNoRequiredRoleAllowsAnyAuthenticatedUser(t *testing.T) {
	decision := Decide(authenticated(models.RoleBackOffice), true, true, Request{Path: "/accounts"})
	assert.Equal(t, OutcomeAllow, decision.Outcome)
}
