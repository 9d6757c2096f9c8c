package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/internal/service"
	"github.com/mwarzecha/authgate/pkg/validator"
)

// IdentityClient is the credential-facing subset of the identity provider
// client the handlers need.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password string) (*domain.Credential, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Credential, error)
	RefreshIDToken(ctx context.Context, refreshToken string) (string, error)
}

// AuthHandler handles HTTP requests for auth endpoints. It owns input
// validation and provider error mapping; flow logic lives in the service.
type AuthHandler struct {
	provider IdentityClient
	service  *service.AuthService
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(provider IdentityClient, svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, service: svc, logger: logger}
}

// --- Request DTOs ---

// SignUpRequest is the JSON request body for account creation.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

// SignInRequest is the JSON request body for sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

// --- Handlers ---

// SignUp handles POST /api/v1/auth/sign-up
//
// Two dependent steps: create the provider credential, then mirror a profile
// record keyed by the provider-assigned subject id. A record-write failure
// does not roll the credential back.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	// Validation failures block before any provider call.
	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	cred, err := h.provider.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := signUpFailure(err)
		writeResult(w, status, &domain.Result{Success: false, Message: message})
		return
	}

	result := h.service.SignUp(r.Context(), service.SignUpParams{
		UID:   cred.UID,
		Name:  req.Name,
		Email: req.Email,
	})
	if !result.Success {
		writeResult(w, http.StatusInternalServerError, result)
		return
	}

	writeResult(w, http.StatusCreated, result)
}

// SignIn handles POST /api/v1/auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	cred, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := signInFailure(err)
		writeResult(w, status, &domain.Result{Success: false, Message: message})
		return
	}

	// Force a fresh token so session establishment never works from a stale
	// cached token.
	idToken, err := h.provider.RefreshIDToken(r.Context(), cred.RefreshToken)
	if err != nil {
		status, message := signInFailure(err)
		writeResult(w, status, &domain.Result{Success: false, Message: message})
		return
	}

	result := h.service.SignIn(r.Context(), w, service.SignInParams{
		Email:   req.Email,
		IDToken: idToken,
	})
	if !result.Success {
		writeResult(w, signInResultStatus(result), result)
		return
	}

	writeResult(w, http.StatusOK, result)
}

// SignOut handles POST /api/v1/auth/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(w)
	writeResult(w, http.StatusOK, &domain.Result{Success: true, Message: "Signed out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.service.CurrentUser(r.Context(), r)
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "no active session"},
		})
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// Status handles GET /api/v1/auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{
		Data: map[string]bool{"authenticated": h.service.IsAuthenticated(r.Context(), r)},
	})
}
