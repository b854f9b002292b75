package application

import "solvectl/internal/domain"

type Decision string

const (
	// DecisionWait renders a neutral waiting indicator; no content, no
	// redirect. Avoids a flash-of-redirect during rehydration.
	DecisionWait Decision = "wait"
	DecisionAllow Decision = "allow"
	// DecisionRedirectEntry sends the caller to the anonymous entry point.
	DecisionRedirectEntry Decision = "redirect_entry"
	// DecisionRedirectHome sends an authenticated caller without the
	// required role to the default landing view. Insufficient privilege is
	// "wrong place", not a fault.
	DecisionRedirectHome Decision = "redirect_home"
)

// Decide is a pure function of session state; callers re-evaluate it on
// every session change.
func Decide(snap SessionSnapshot, required domain.Role) Decision {
	if snap.Phase == SessionLoading {
		return DecisionWait
	}
	if !snap.Authenticated() {
		return DecisionRedirectEntry
	}
	if !snap.User.HasRole(required) {
		return DecisionRedirectHome
	}

	return DecisionAllow
}
