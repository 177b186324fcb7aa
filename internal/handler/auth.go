package handler

import (
	"errors"
	"net/http"

	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication and profiles.
type AuthHandler struct {
	service *service.AuthService
	dev     bool
}

// NewAuthHandler creates a new AuthHandler. dev controls whether 500
// responses include internal error details.
func NewAuthHandler(svc *service.AuthService, dev bool) *AuthHandler {
	return &AuthHandler{service: svc, dev: dev}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeBody(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	if errs := checkRequest(req); errs != nil {
		failValidation(w, errs)
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fail(w, http.StatusConflict, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error registering user")
		return
	}

	respond(w, http.StatusCreated, envelope{
		"message": "User registered successfully",
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	if errs := checkRequest(req); errs != nil {
		failValidation(w, errs)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fail(w, http.StatusUnauthorized, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error logging in")
		return
	}

	respond(w, http.StatusOK, envelope{
		"message": "Login successful",
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// HandleGetProfile handles GET /api/auth/profile requests.
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error fetching profile")
		return
	}

	respond(w, http.StatusOK, envelope{"user": user})
}

// HandleUpdateProfile handles PUT /api/auth/profile requests.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeBody(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	if errs := checkRequest(req); errs != nil {
		failValidation(w, errs)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), identity.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			fail(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCurrentPasswordRequired):
			fail(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCurrentPasswordIncorrect):
			fail(w, http.StatusUnauthorized, err.Error())
		default:
			serverError(w, err, h.dev, "Error updating profile")
		}
		return
	}

	respond(w, http.StatusOK, envelope{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
