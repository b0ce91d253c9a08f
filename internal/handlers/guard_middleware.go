package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElStudioBarberia/course-service/internal/auth"
	"github.com/ElStudioBarberia/course-service/internal/models"
)

const contextUserKey = "current_user"

// GuardMiddleware applies the route guard to protected endpoints using the
// process-wide session snapshot.
type GuardMiddleware struct {
	store *auth.Store
}

func NewGuardMiddleware(store *auth.Store) *GuardMiddleware {
	return &GuardMiddleware{store: store}
}

// Guard evaluates the session exactly once per request. While the initial
// session resolution is still in flight, clients are told to retry instead
// of being bounced to the login page.
func (g *GuardMiddleware) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := g.store.Current()
		switch auth.Evaluate(s) {
		case auth.DecisionShowLoading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
				Message: "Session is still resolving, retry shortly",
			})
		case auth.DecisionRedirectLogin:
			c.Redirect(http.StatusFound, auth.PathLanding)
			c.Abort()
		case auth.DecisionRedirectPending:
			c.Redirect(http.StatusFound, auth.PathPendingApproval)
			c.Abort()
		default:
			c.Set(contextUserKey, s.User)
			c.Next()
		}
	}
}

// Identify resolves the current user without enforcing the guard. Endpoints
// behind it must tolerate an anonymous session.
func (g *GuardMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := g.store.Current(); s.User != nil {
			c.Set(contextUserKey, s.User)
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the current user holds one of the roles.
func (g *GuardMiddleware) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Insufficient role"})
	}
}

// CurrentUser returns the guarded request's user, nil when anonymous.
func CurrentUser(c *gin.Context) *models.AppUser {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*models.AppUser); ok {
			return user
		}
	}
	return nil
}
