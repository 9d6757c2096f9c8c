package http

import (
	"net/http"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/internal/identity"
	"github.com/mwarzecha/authgate/internal/service"
)

// signUpFailure maps a provider error from credential creation to an HTTP
// status and user-facing text. Unrecognized codes fall back to the generic
// creation-failure message.
func signUpFailure(err error) (int, string) {
	switch identity.KindOf(err) {
	case identity.KindEmailInUse:
		return http.StatusConflict, "An account with this email already exists. Please sign in instead."
	case identity.KindInvalidEmail:
		return http.StatusBadRequest, "Invalid email address."
	case identity.KindWeakPassword:
		return http.StatusBadRequest, "Password is too weak. Please use a stronger password."
	case identity.KindNetworkFailure:
		return http.StatusServiceUnavailable, "Network error. Please check your internet connection."
	default:
		return http.StatusInternalServerError, "Failed to create account. Please try again."
	}
}

// signInFailure maps a provider error from the credential check to an HTTP
// status and user-facing text. Distinct from the sign-up set; the two flows
// surface different provider codes.
func signInFailure(err error) (int, string) {
	switch identity.KindOf(err) {
	case identity.KindInvalidCredential:
		return http.StatusUnauthorized, "Invalid email or password. Please try again."
	case identity.KindUserNotFound:
		return http.StatusNotFound, "No account found with this email. Please sign up first."
	case identity.KindInvalidEmail:
		return http.StatusBadRequest, "Invalid email address."
	case identity.KindRateLimited:
		return http.StatusTooManyRequests, "Too many failed attempts. Please try again later."
	case identity.KindNetworkFailure:
		return http.StatusServiceUnavailable, "Network error. Please check your internet connection."
	default:
		return http.StatusInternalServerError, "Failed to sign in. Please try again."
	}
}

// signInResultStatus picks the status for a failed session-establishment
// result. The service reports session outcomes through display messages, so
// the mapping keys on those.
func signInResultStatus(result *domain.Result) int {
	switch result.Message {
	case service.MsgAccountNotFound:
		return http.StatusNotFound
	case service.MsgInvalidToken, service.MsgExpiredToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
