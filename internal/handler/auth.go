package handler

import (
	"net/http"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/middleware"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
)

// AuthHandler handles HTTP requests for accounts and sessions.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/users/register/ requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/users/login/ requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /api/users/logout/ requests. The body is optional.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	if err := h.service.Logout(r.Context(), middleware.IdentityFromContext(r.Context()), req); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detailResponse("Logged out successfully"))
}

// HandleRefresh handles POST /api/users/token/refresh/ requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /api/users/me/ requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Me(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
