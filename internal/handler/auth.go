package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iMallco/iMall/internal/middleware"
	"github.com/iMallco/iMall/internal/model"
	"github.com/iMallco/iMall/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleSignUp handles POST /api/auth/signup requests.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleSignIn handles POST /api/auth/signin requests.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to sign in")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSetUserType handles POST /api/auth/set-user-type requests.
func (h *AuthHandler) HandleSetUserType(w http.ResponseWriter, r *http.Request) {
	var req model.SetUserTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.SetUserType(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to set user type")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleResetPassword handles POST /api/auth/reset-password requests.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to process password reset")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /api/auth/logout requests. Tokens are stateless,
// so the server only acknowledges; the token stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// HandleMe handles GET /api/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Access token required"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps service errors onto status codes. Unexpected errors
// are logged and replaced by fallback so internals never reach the client.
func (h *AuthHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse(ve.Message))
	case errors.Is(err, service.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		slog.ErrorContext(r.Context(), fallback, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(fallback))
	}
}
