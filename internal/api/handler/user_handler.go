package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/api/middleware"
	"marketplace/internal/api/respond"
	"marketplace/internal/api/util"
	"marketplace/internal/core/service"
)

type UserHandler struct {
	userService service.UserService
	tokens      *util.TokenManager
}

func NewUserHandler(userService service.UserService, tokens *util.TokenManager) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// Register handles POST /api/users and returns the created user plus a
// session token.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respond.Error(w, http.StatusConflict, "User exists")
		case errors.Is(err, service.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Missing credentials")
		return
	}

	user, err := h.userService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// List handles GET /api/users. Password hashes never serialize.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

// UpdateTheme handles PATCH /api/users/theme for the authenticated user.
func (h *UserHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Missing token")
		return
	}

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.userService.UpdateTheme(user.ID, req.Theme)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, "Invalid theme")
		case errors.Is(err, service.ErrNotFound):
			respond.Error(w, http.StatusUnauthorized, "Invalid token")
		default:
			respond.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{"user": updated})
}
