package middleware

import (
	"net/http"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/response"
)

var authorizer = service.NewAuthorizer()

// RequireRole creates a middleware that checks if the user has any of the required roles.
// The actor is read from context (set by AuthMiddleware from JWT claims).
// Usecases repeat the check; this only rejects early at the route level.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if !authorizer.HasRole(actor, roles...) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequirePhysician is a convenience middleware for applicant endpoints
func RequirePhysician(next http.Handler) http.Handler {
	return RequireRole(entity.RolePhysician)(next)
}

// RequireStaff is a convenience middleware for reviewer or admin endpoints
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleReviewer)(next)
}
