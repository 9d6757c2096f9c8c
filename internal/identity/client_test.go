package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwarzecha/authgate/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testHTTPClient(name string) *httpclient.CircuitBreakerClient {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	cbCfg := httpclient.DefaultCircuitBreakerConfig(name)
	cbCfg.MinRequests = 100 // Never trip during tests.
	return httpclient.NewCircuitBreakerClient(httpclient.New(cfg), cbCfg, testLogger())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testHTTPClient(t.Name()), testLogger())
}

func writeProviderError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": code},
	})
}

func TestClient_SignUp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signUp", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req credentialRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		assert.Equal(t, "secret123", req.Password)
		assert.True(t, req.ReturnSecureToken)

		_ = json.NewEncoder(w).Encode(credentialResponse{
			LocalID:      "uid-1",
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
		})
	})

	cred, err := client.SignUp(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", cred.UID)
	assert.Equal(t, "id-token", cred.IDToken)
	assert.Equal(t, "refresh-token", cred.RefreshToken)
	assert.Equal(t, time.Hour, cred.ExpiresIn)
}

func TestClient_SignUp_EmailExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeProviderError(w, http.StatusBadRequest, "EMAIL_EXISTS")
	})

	_, err := client.SignUp(context.Background(), "alice@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, KindEmailInUse, KindOf(err))
}

func TestClient_SignInWithPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		_ = json.NewEncoder(w).Encode(credentialResponse{
			LocalID:      "uid-2",
			IDToken:      "id-token-2",
			RefreshToken: "refresh-token-2",
			ExpiresIn:    "3600",
		})
	})

	cred, err := client.SignInWithPassword(context.Background(), "bob@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", cred.UID)
}

func TestClient_SignInWithPassword_Errors(t *testing.T) {
	tests := []struct {
		code string
		want Kind
	}{
		{"INVALID_PASSWORD", KindInvalidCredential},
		{"INVALID_LOGIN_CREDENTIALS", KindInvalidCredential},
		{"EMAIL_NOT_FOUND", KindUserNotFound},
		{"INVALID_EMAIL", KindInvalidEmail},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeProviderError(w, http.StatusBadRequest, tt.code)
			})

			_, err := client.SignInWithPassword(context.Background(), "bob@example.com", "wrong")
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestClient_SignIn_ErrorWithDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeProviderError(w, http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters")
	})

	_, err := client.SignUp(context.Background(), "carol@example.com", "ab")
	require.Error(t, err)
	assert.Equal(t, KindWeakPassword, KindOf(err))
}

func TestClient_RefreshIDToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/token", r.URL.Path)

		var req refreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh_token", req.GrantType)
		assert.Equal(t, "old-refresh", req.RefreshToken)

		_ = json.NewEncoder(w).Encode(refreshResponse{
			IDToken:   "fresh-id-token",
			UserID:    "uid-1",
			ExpiresIn: "3600",
		})
	})

	token, err := client.RefreshIDToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh-id-token", token)
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Connection refused from here on.

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testHTTPClient(t.Name()), testLogger())

	_, err := client.SignInWithPassword(context.Background(), "bob@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, KindNetworkFailure, KindOf(err))
}

func TestClient_MalformedErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "not json at all")
	})

	_, err := client.SignUp(context.Background(), "dan@example.com", "secret123")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.Ping(context.Background()))
}
