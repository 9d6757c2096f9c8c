package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/pkg/httpclient"
)

var providerRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_provider_requests_total",
		Help: "Total number of identity provider API calls",
	},
	[]string{"operation", "outcome"},
)

// Config holds identity provider client configuration.
type Config struct {
	// BaseURL is the root of the provider's REST API, without a trailing slash.
	BaseURL string

	// APIKey is appended to every request as the key query parameter.
	APIKey string
}

// Client calls the identity provider's credential endpoints. All
// authentication logic (password checks, token signing) lives on the provider
// side; this client only shuttles requests and adapts error codes.
type Client struct {
	cfg    Config
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewClient creates an identity provider client over the given HTTP client.
func NewClient(cfg Config, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   hc,
		logger: logger,
	}
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	IDToken   string `json:"id_token"`
	UserID    string `json:"user_id"`
	ExpiresIn string `json:"expires_in"`
}

// errorResponse is the provider's error body shape.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates a credential for the given email and password and returns
// the provider-assigned subject id with a fresh ID token.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Credential, error) {
	var resp credentialResponse
	err := c.post(ctx, "signUp", "/v1/accounts:signUp", credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toCredential(resp), nil
}

// SignInWithPassword authenticates the email/password pair against the
// provider and returns a fresh credential on success.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Credential, error) {
	var resp credentialResponse
	err := c.post(ctx, "signInWithPassword", "/v1/accounts:signInWithPassword", credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return toCredential(resp), nil
}

// RefreshIDToken exchanges a refresh token for a newly issued ID token. Flows
// call this immediately before session establishment so a stale cached token
// is never used.
func (c *Client) RefreshIDToken(ctx context.Context, refreshToken string) (string, error) {
	var resp refreshResponse
	err := c.post(ctx, "refreshToken", "/v1/token", refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.IDToken, nil
}

// Ping probes the provider API for health checking.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create provider ping request: %w", err)
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return nil
}

// post sends a JSON request to the given provider endpoint and decodes the
// response into out, translating error bodies into tagged variants.
func (c *Client) post(ctx context.Context, operation, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	endpoint := c.cfg.BaseURL + path + "?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		providerRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		return networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		providerRequestsTotal.WithLabelValues(operation, "network_error").Inc()
		return networkError(err)
	}

	if resp.StatusCode >= 400 {
		perr := parseErrorBody(raw)
		providerRequestsTotal.WithLabelValues(operation, perr.Kind.String()).Inc()
		c.logger.WarnContext(ctx, "identity provider call failed",
			slog.String("operation", operation),
			slog.Int("status", resp.StatusCode),
			slog.String("provider_code", perr.Code),
			slog.String("kind", perr.Kind.String()),
		)
		return perr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		providerRequestsTotal.WithLabelValues(operation, "bad_response").Inc()
		return fmt.Errorf("decode %s response: %w", operation, err)
	}

	providerRequestsTotal.WithLabelValues(operation, "success").Inc()
	return nil
}

func parseErrorBody(raw []byte) *Error {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &Error{Kind: KindUnknown, Code: string(raw)}
	}
	return mapCode(body.Error.Message)
}

func toCredential(resp credentialResponse) *domain.Credential {
	cred := &domain.Credential{
		UID:          resp.LocalID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil {
		cred.ExpiresIn = time.Duration(secs) * time.Second
	}
	return cred
}
