package auth

import "github.com/ElStudioBarberia/course-service/internal/models"

// Decision is the outcome of evaluating the route guard for one render.
// Exactly one decision is produced per evaluation.
type Decision int

const (
	DecisionShowLoading Decision = iota
	DecisionRedirectLogin
	DecisionRedirectPending
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionShowLoading:
		return "show-loading"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectPending:
		return "redirect-pending"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate is the stateless per-render guard for protected pages. It must be
// re-evaluated on every navigation so that an enablement flip by an admin
// takes effect on the user's next guarded render.
func Evaluate(s Session) Decision {
	switch {
	case s.Loading:
		return DecisionShowLoading
	case s.User == nil:
		return DecisionRedirectLogin
	case !s.User.Habilitado && s.User.Role != models.RoleBarbero:
		return DecisionRedirectPending
	default:
		return DecisionAllow
	}
}
