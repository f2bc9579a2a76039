package middleware

import (
	"context"
	"net/http"

	"marketplace/internal/api/respond"
	"marketplace/internal/api/util"
	"marketplace/internal/core/model"
	"marketplace/internal/core/service"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware verifies the bearer token and resolves it to a live user
// record. It answers "who", not "may": role checks belong to RequireRole.
type AuthMiddleware struct {
	tokens      *util.TokenManager
	userService service.UserService
}

func NewAuthMiddleware(tokens *util.TokenManager, userService service.UserService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:      tokens,
		userService: userService,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := util.ExtractBearer(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		// The token may outlive the account; resolve against the store.
		user, err := m.userService.GetUser(claims.UserID)
		if err != nil || user == nil {
			respond.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is the single authorization predicate every mutating route
// goes through. It must run after Authenticate.
func RequireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Missing token")
			return
		}
		if user.Role != role {
			respond.Error(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the identity attached by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}
