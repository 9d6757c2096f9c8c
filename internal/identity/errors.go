package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of provider failure variants. Flows and handlers
// branch on Kind only; raw provider code strings never leave this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredential
	KindUserNotFound
	KindInvalidEmail
	KindWeakPassword
	KindEmailInUse
	KindRateLimited
	KindNetworkFailure
	KindInvalidToken
	KindExpiredToken
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid_credential"
	case KindUserNotFound:
		return "user_not_found"
	case KindInvalidEmail:
		return "invalid_email"
	case KindWeakPassword:
		return "weak_password"
	case KindEmailInUse:
		return "email_in_use"
	case KindRateLimited:
		return "rate_limited"
	case KindNetworkFailure:
		return "network_failure"
	case KindInvalidToken:
		return "invalid_token"
	case KindExpiredToken:
		return "expired_token"
	default:
		return "unknown"
	}
}

// Error is a provider failure tagged with its variant. Code preserves the raw
// provider code for logging; it is never shown to users.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider: %s (%s)", e.Kind, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("identity provider: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("identity provider: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the variant of a provider error, or KindUnknown for any
// other error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// codeKinds maps provider error codes to variants. Both the REST API's
// UPPER_SNAKE codes and the SDK-style auth/kebab-case codes are listed, since
// the provider emits the former and clients forward the latter.
var codeKinds = map[string]Kind{
	"INVALID_PASSWORD":            KindInvalidCredential,
	"INVALID_LOGIN_CREDENTIALS":   KindInvalidCredential,
	"auth/invalid-credential":     KindInvalidCredential,
	"auth/wrong-password":         KindInvalidCredential,
	"EMAIL_NOT_FOUND":             KindUserNotFound,
	"USER_NOT_FOUND":              KindUserNotFound,
	"auth/user-not-found":         KindUserNotFound,
	"INVALID_EMAIL":               KindInvalidEmail,
	"auth/invalid-email":          KindInvalidEmail,
	"WEAK_PASSWORD":               KindWeakPassword,
	"auth/weak-password":          KindWeakPassword,
	"EMAIL_EXISTS":                KindEmailInUse,
	"auth/email-already-in-use":   KindEmailInUse,
	"TOO_MANY_ATTEMPTS_TRY_LATER": KindRateLimited,
	"auth/too-many-requests":      KindRateLimited,
	"NETWORK_ERROR":               KindNetworkFailure,
	"auth/network-request-failed": KindNetworkFailure,
	"INVALID_ID_TOKEN":            KindInvalidToken,
	"auth/invalid-id-token":       KindInvalidToken,
	"INVALID_SESSION_COOKIE":      KindInvalidToken,
	"TOKEN_EXPIRED":               KindExpiredToken,
	"auth/id-token-expired":       KindExpiredToken,
}

// mapCode converts a raw provider code into a tagged error. Codes may carry a
// trailing detail segment ("WEAK_PASSWORD : Password should be ..."); only the
// leading token is matched.
func mapCode(code string) *Error {
	normalized := code
	if i := strings.IndexAny(normalized, " :"); i > 0 {
		normalized = normalized[:i]
	}
	normalized = strings.TrimSpace(normalized)

	if kind, ok := codeKinds[normalized]; ok {
		return &Error{Kind: kind, Code: code}
	}
	return &Error{Kind: KindUnknown, Code: code}
}

// networkError wraps a transport-level failure (dial error, timeout, open
// circuit breaker) as the network-failure variant.
func networkError(err error) *Error {
	return &Error{Kind: KindNetworkFailure, Err: err}
}
