package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/internal/identity"
	"github.com/mwarzecha/authgate/internal/repository"
	apperrors "github.com/mwarzecha/authgate/pkg/errors"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Duration is the fixed session lifetime. The cookie max-age and the minted
// token validity always use this value; it never varies per request.
const Duration = 7 * 24 * time.Hour

const maxAgeSeconds = int(Duration / time.Second)

// TrustClient is the server-side verification capability the manager needs.
type TrustClient interface {
	MintSessionCookie(ctx context.Context, idToken string, validFor time.Duration) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*identity.TokenClaims, error)
	VerifySessionCookie(ctx context.Context, cookie string, checkRevoked bool) (*identity.TokenClaims, error)
}

// Manager bridges identity-provider trust into application session state: it
// turns a verified ID token into a session cookie, resolves an incoming
// cookie back to a stored user record, and tears sessions down.
type Manager struct {
	trust       TrustClient
	users       repository.UserRepository
	environment string
	logger      *slog.Logger
}

// NewManager creates a session manager. The secure cookie attribute is set
// only when environment is "production".
func NewManager(trust TrustClient, users repository.UserRepository, environment string, logger *slog.Logger) *Manager {
	return &Manager{
		trust:       trust,
		users:       users,
		environment: environment,
		logger:      logger,
	}
}

// Establish exchanges a verified ID token for a session cookie and resolves
// the token's subject to a stored user record.
//
// The cookie is written to the response before the token is verified and the
// record looked up, so a sign-in against a missing record still leaves the
// cookie set. Callers that treat the missing record as a failure must surface
// it without expecting the cookie to be absent.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, idToken string) (*domain.User, error) {
	cookie, err := m.trust.MintSessionCookie(ctx, idToken, Duration)
	if err != nil {
		return nil, err
	}

	m.setCookie(w, cookie)

	claims, err := m.trust.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := m.users.GetByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// CurrentUser resolves the session cookie on the request to a stored user
// record. It returns nil for a missing cookie, a cookie that fails
// verification, or a subject with no stored record. It never returns an
// error; with no cookie present it performs zero network calls.
func (m *Manager) CurrentUser(ctx context.Context, r *http.Request) *domain.User {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := m.trust.VerifySessionCookie(ctx, cookie.Value, true)
	if err != nil {
		m.logger.DebugContext(ctx, "session cookie rejected",
			slog.String("kind", identity.KindOf(err).String()),
		)
		return nil
	}

	user, err := m.users.GetByID(ctx, claims.UID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			m.logger.WarnContext(ctx, "user lookup failed during session resolution",
				slog.String("user_id", claims.UID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	return user
}

// IsAuthenticated reports whether the request carries a resolvable session.
func (m *Manager) IsAuthenticated(ctx context.Context, r *http.Request) bool {
	return m.CurrentUser(ctx, r) != nil
}

// End deletes the session cookie. Only the client's transport credential is
// removed; the minted token stays valid on the provider side until expiry.
// Ending an absent session is not an error.
func (m *Manager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) setCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   m.environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
}
