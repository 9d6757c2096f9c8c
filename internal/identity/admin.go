package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mwarzecha/authgate/pkg/httpclient"
)

// TokenClaims is the verified content of an ID token or session cookie.
type TokenClaims struct {
	UID      string
	Email    string
	IssuedAt time.Time
}

// AdminConfig holds the server-side trust configuration.
type AdminConfig struct {
	// BaseURL is the root of the provider's REST API, without a trailing slash.
	BaseURL string

	// APIKey authenticates admin-level API calls.
	APIKey string

	// SigningKey is the HS256 key the provider signs ID tokens and session
	// cookies with. Verification happens locally against this key; issuance
	// always stays on the provider side.
	SigningKey string
}

// AdminClient is the server-side trust capability: it mints session cookies
// from verified ID tokens through the provider and verifies tokens locally.
type AdminClient struct {
	cfg        AdminConfig
	signingKey []byte
	http       *httpclient.CircuitBreakerClient
	logger     *slog.Logger
}

// NewAdminClient creates the admin/trust client.
func NewAdminClient(cfg AdminConfig, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *AdminClient {
	return &AdminClient{
		cfg:        cfg,
		signingKey: []byte(cfg.SigningKey),
		http:       hc,
		logger:     logger,
	}
}

type mintRequest struct {
	IDToken       string `json:"idToken"`
	ValidDuration int64  `json:"validDuration"`
}

type mintResponse struct {
	SessionCookie string `json:"sessionCookie"`
}

type lookupRequest struct {
	LocalID []string `json:"localId"`
}

type lookupResponse struct {
	Users []struct {
		LocalID    string `json:"localId"`
		Disabled   bool   `json:"disabled"`
		ValidSince string `json:"validSince"`
	} `json:"users"`
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// MintSessionCookie exchanges an ID token for a long-lived session cookie.
// The provider rejects invalid or expired ID tokens; a session cookie is
// never minted from anything else.
func (c *AdminClient) MintSessionCookie(ctx context.Context, idToken string, validFor time.Duration) (string, error) {
	payload, err := json.Marshal(mintRequest{
		IDToken:       idToken,
		ValidDuration: int64(validFor.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("marshal mint request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v1/sessionCookie?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", networkError(err)
	}

	if resp.StatusCode >= 400 {
		perr := parseErrorBody(raw)
		c.logger.WarnContext(ctx, "session cookie mint rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("provider_code", perr.Code),
			slog.String("kind", perr.Kind.String()),
		)
		return "", perr
	}

	var body mintResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode mint response: %w", err)
	}
	if body.SessionCookie == "" {
		return "", &Error{Kind: KindUnknown, Code: "EMPTY_SESSION_COOKIE"}
	}

	return body.SessionCookie, nil
}

// VerifyIDToken verifies an ID token against the provider signing key and
// returns its claims. Expired and otherwise-invalid tokens come back as
// distinguishable variants.
func (c *AdminClient) VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	return c.verify(idToken)
}

// VerifySessionCookie verifies a session cookie. When checkRevoked is set the
// provider account is looked up and a cookie issued before the account's
// valid-since watermark, or for a disabled account, is rejected.
func (c *AdminClient) VerifySessionCookie(ctx context.Context, cookie string, checkRevoked bool) (*TokenClaims, error) {
	claims, err := c.verify(cookie)
	if err != nil {
		return nil, err
	}

	if checkRevoked {
		if err := c.checkRevocation(ctx, claims); err != nil {
			return nil, err
		}
	}

	return claims, nil
}

func (c *AdminClient) verify(tokenString string) (*TokenClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &Error{Kind: KindExpiredToken, Err: err}
		}
		return nil, &Error{Kind: KindInvalidToken, Err: err}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, &Error{Kind: KindInvalidToken, Err: fmt.Errorf("missing subject claim")}
	}

	out := &TokenClaims{
		UID:   claims.Subject,
		Email: claims.Email,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (c *AdminClient) checkRevocation(ctx context.Context, claims *TokenClaims) error {
	payload, err := json.Marshal(lookupRequest{LocalID: []string{claims.UID}})
	if err != nil {
		return fmt.Errorf("marshal lookup request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v1/accounts:lookup?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorBody(raw)
	}

	var body lookupResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode lookup response: %w", err)
	}
	if len(body.Users) == 0 {
		return &Error{Kind: KindUserNotFound, Code: "USER_NOT_FOUND"}
	}

	account := body.Users[0]
	if account.Disabled {
		return &Error{Kind: KindInvalidToken, Code: "USER_DISABLED"}
	}

	if account.ValidSince != "" {
		secs, err := strconv.ParseInt(account.ValidSince, 10, 64)
		if err == nil && claims.IssuedAt.Before(time.Unix(secs, 0)) {
			return &Error{Kind: KindInvalidToken, Code: "SESSION_REVOKED"}
		}
	}

	return nil
}
