package router

import (
	"context"
	"net/http"
	"time"

	"marketplace/internal/api/handler"
	"marketplace/internal/api/middleware"
	"marketplace/internal/api/respond"
	"marketplace/internal/api/util"
	"marketplace/internal/core/model"
	"marketplace/internal/core/service"
)

// PingFunc reports whether the data store is reachable. A nil PingFunc means
// the deployment has no store-level liveness probe.
type PingFunc func(ctx context.Context) error

func NewRouter(
	productService service.ProductService,
	userService service.UserService,
	tokens *util.TokenManager,
	corsOrigins []string,
	pingStore PingFunc,
) http.Handler {
	// Initialize handlers
	productHandler := handler.NewProductHandler(productService)
	userHandler := handler.NewUserHandler(userService, tokens)
	authMiddleware := middleware.NewAuthMiddleware(tokens, userService)

	// Create router
	mux := http.NewServeMux()

	// Middleware chains: public, authenticated, admin-only
	public := func(h http.Handler) http.Handler {
		return middleware.CORSMiddleware(corsOrigins,
			middleware.LoggingMiddleware(h),
		)
	}
	authenticated := func(h http.Handler) http.Handler {
		return public(authMiddleware.Authenticate(h))
	}
	adminOnly := func(h http.Handler) http.Handler {
		return authenticated(middleware.RequireRole(model.RoleAdmin, h))
	}

	// Health check endpoint
	mux.Handle("GET /health", public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if pingStore != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pingStore(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "degraded",
					"database": "unreachable",
				})
				return
			}
			status["database"] = "connected"
		}
		respond.JSON(w, http.StatusOK, status)
	})))

	// Product routes
	mux.Handle("GET /api/products", public(http.HandlerFunc(productHandler.List)))
	mux.Handle("GET /api/products/categories", public(http.HandlerFunc(productHandler.Categories)))
	mux.Handle("GET /api/products/{id}", public(http.HandlerFunc(productHandler.Get)))
	mux.Handle("POST /api/products", adminOnly(http.HandlerFunc(productHandler.Create)))
	mux.Handle("PATCH /api/products/{id}", adminOnly(http.HandlerFunc(productHandler.Patch)))
	mux.Handle("DELETE /api/products/{id}", adminOnly(http.HandlerFunc(productHandler.Delete)))

	// User routes
	mux.Handle("GET /api/users", public(http.HandlerFunc(userHandler.List)))
	mux.Handle("POST /api/users", public(http.HandlerFunc(userHandler.Register)))
	mux.Handle("POST /api/users/login", public(http.HandlerFunc(userHandler.Login)))
	mux.Handle("PATCH /api/users/theme", authenticated(http.HandlerFunc(userHandler.UpdateTheme)))

	// CORS preflight: the middleware short-circuits OPTIONS before the
	// no-op handler runs.
	mux.Handle("OPTIONS /", public(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	return mux
}
