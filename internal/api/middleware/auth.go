package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/service"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Auth resolves the bearer token to a live session and stores the
// acting user on the request context. Everything behind it can trust
// GetUserID.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("ERROR [middleware.Auth] missing authorization header")
				unauthorized(w, domain.ErrInvalidToken)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Printf("ERROR [middleware.Auth] invalid authorization header format")
				unauthorized(w, domain.ErrInvalidToken)
				return
			}

			session, err := authService.Authenticate(r.Context(), parts[1])
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				unauthorized(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes the 401 envelope. The response code follows the
// domain error so an expired session is distinguishable from a bad
// token; anything else collapses to the generic invalid-token code.
func unauthorized(w http.ResponseWriter, err error) {
	code := domain.ErrInvalidToken.Code
	message := "Unable to authenticate request. Please login to continue"

	var appErr *domain.Error
	if errors.As(err, &appErr) && appErr.Kind == domain.KindInvalidToken {
		code = appErr.Code
		message = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"response_code": code,
		"message":       message,
	})
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
