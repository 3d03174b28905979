package domain

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionLogin
	DecisionForbidden
)

const (
	LoginPath     = "/login"
	ForbiddenPath = "/unauthorized"
)

// Authorize gates access on role membership. A nil identity must log in first;
// an empty required set admits any authenticated identity.
func Authorize(id *Identity, required []Role) Decision {
	if id == nil {
		return DecisionLogin
	}
	if len(required) == 0 {
		return DecisionAllow
	}
	if HasRequiredRole(id.Roles, required) {
		return DecisionAllow
	}
	return DecisionForbidden
}

func (d Decision) RedirectPath() string {
	switch d {
	case DecisionLogin:
		return LoginPath
	case DecisionForbidden:
		return ForbiddenPath
	default:
		return ""
	}
}
