package identity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Kind
	}{
		{"email exists", "EMAIL_EXISTS", KindEmailInUse},
		{"invalid password", "INVALID_PASSWORD", KindInvalidCredential},
		{"invalid login credentials", "INVALID_LOGIN_CREDENTIALS", KindInvalidCredential},
		{"email not found", "EMAIL_NOT_FOUND", KindUserNotFound},
		{"invalid email", "INVALID_EMAIL", KindInvalidEmail},
		{"weak password", "WEAK_PASSWORD", KindWeakPassword},
		{"rate limited", "TOO_MANY_ATTEMPTS_TRY_LATER", KindRateLimited},
		{"invalid id token", "INVALID_ID_TOKEN", KindInvalidToken},
		{"invalid session cookie", "INVALID_SESSION_COOKIE", KindInvalidToken},
		{"expired token", "TOKEN_EXPIRED", KindExpiredToken},
		{"sdk style credential", "auth/invalid-credential", KindInvalidCredential},
		{"sdk style user not found", "auth/user-not-found", KindUserNotFound},
		{"sdk style rate limited", "auth/too-many-requests", KindRateLimited},
		{"sdk style network", "auth/network-request-failed", KindNetworkFailure},
		{"unrecognized code", "SOMETHING_NEW", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapCode(tt.code)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestMapCode_TrailingDetail(t *testing.T) {
	err := mapCode("WEAK_PASSWORD : Password should be at least 6 characters")
	assert.Equal(t, KindWeakPassword, err.Kind)

	err = mapCode("TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled")
	assert.Equal(t, KindRateLimited, err.Kind)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindEmailInUse, KindOf(&Error{Kind: KindEmailInUse}))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain error")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	// Matching works through wrapping.
	wrapped := fmt.Errorf("sign in: %w", &Error{Kind: KindInvalidCredential})
	assert.Equal(t, KindInvalidCredential, KindOf(wrapped))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := networkError(cause)

	assert.Equal(t, KindNetworkFailure, err.Kind)
	assert.True(t, errors.Is(err, cause))
}
