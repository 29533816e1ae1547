package middleware

import (
	"log"
	"net/http"

	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

// RequireRoles guards a route group behind the privilege registry:
// the acting user must hold an active grant for one of the given
// roles.
func RequireRoles(privilegeService *service.PrivilegeService, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				unauthorized(w, domain.ErrInvalidToken)
				return
			}

			if err := privilegeService.RequireRole(r.Context(), userID, roles...); err != nil {
				log.Printf("ERROR [middleware.RequireRoles] user %s: %v", userID, err)
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards the administrative route group.
func RequireAdmin(privilegeService *service.PrivilegeService) func(http.Handler) http.Handler {
	return RequireRoles(privilegeService, domain.AdminRoles...)
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"response_code":19,"message":"Sorry you do not have permission to perform this action"}`))
}
