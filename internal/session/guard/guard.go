package guard

import (
	"carddemo/internal/session/models"
	"carddemo/internal/session/state"
)

// Outcome is what the guard tells the navigation layer to do.
type Outcome string

const (
	// OutcomeChecking means a stored token exists but the state machine has
	// not confirmed it yet: dispatch a validation and show a loading view.
	OutcomeChecking Outcome = "checking"

	OutcomeAllow         Outcome = "allow"
	OutcomeRedirectLogin Outcome = "redirect_login"
	OutcomeRedirectHome  Outcome = "redirect_home"
)

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Outcome        Outcome
	RedirectPath   string
	ReturnTo       string
	ReplaceHistory bool
}

// Request describes the navigation being guarded. RequiredRole is empty for
// routes any authenticated user may open.
type Request struct {
	Path         string
	RequiredRole models.Role
}

// Decide is a pure function of (token presence, auth state, session
// validity, role match). Its only side effect is the validation dispatch the
// Checking outcome asks the caller to perform.
func Decide(snap state.Snapshot, hasStoredToken, sessionValid bool, req Request) Decision {
	if !snap.IsAuthenticated() {
		// A stored token that has not been validated in this process yet is
		// worth a round trip before bouncing the user to login.
		if hasStoredToken && snap.Status != state.StatusError {
			return Decision{Outcome: OutcomeChecking}
		}
		return Decision{
			Outcome:      OutcomeRedirectLogin,
			RedirectPath: models.LoginPath,
			ReturnTo:     req.Path,
		}
	}

	if !sessionValid {
		return Decision{
			Outcome:        OutcomeRedirectLogin,
			RedirectPath:   models.LoginPath,
			ReturnTo:       req.Path,
			ReplaceHistory: true,
		}
	}

	if req.RequiredRole != "" && snap.User.Role != req.RequiredRole {
		// Helpful redirect policy: send the user to their own landing page,
		// never to an access-denied page.
		return Decision{
			Outcome:      OutcomeRedirectHome,
			RedirectPath: snap.User.Role.LandingPath(),
		}
	}

	return Decision{Outcome: OutcomeAllow}
}
