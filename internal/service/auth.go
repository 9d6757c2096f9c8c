package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/internal/identity"
	"github.com/mwarzecha/authgate/internal/repository"
	"github.com/mwarzecha/authgate/internal/session"
	apperrors "github.com/mwarzecha/authgate/pkg/errors"
)

// EventProducer publishes auth domain events.
type EventProducer interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserSignedIn(ctx context.Context, user *domain.User) error
}

// AuthService implements the sign-up and sign-in flows on top of the session
// manager and user store. Credential creation and password checks live with
// the identity provider; this layer only mirrors profile records and turns
// session outcomes into caller-facing results.
type AuthService struct {
	users    repository.UserRepository
	sessions *session.Manager
	producer EventProducer
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions *session.Manager,
	producer EventProducer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		producer: producer,
		logger:   logger,
	}
}

// SignUpParams holds the inputs for mirroring a freshly created provider
// credential into a profile record. UID is the provider-assigned subject id.
type SignUpParams struct {
	UID   string
	Name  string
	Email string
}

// SignInParams holds the inputs for establishing a session from a verified
// credential check.
type SignInParams struct {
	Email   string
	IDToken string
}

// SignUp inserts the profile record for a credential the provider has already
// created. The two steps are deliberately not a transaction: a store failure
// here leaves the provider credential in place, and a later sign-in reports
// the missing record rather than assuming it exists.
func (s *AuthService) SignUp(ctx context.Context, params SignUpParams) *domain.Result {
	user := &domain.User{
		ID:        params.UID,
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user record",
			slog.String("user_id", params.UID),
			slog.String("error", err.Error()),
		)
		return &domain.Result{
			Success: false,
			Message: MsgSignUpFailed,
		}
	}

	// Event publishing is non-blocking on failure.
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return &domain.Result{
		Success: true,
		Message: MsgSignUpSuccess,
	}
}

// SignIn establishes a session from a provider-issued ID token and resolves
// the token's subject to a profile record. The session cookie lands on the
// response even when the record lookup fails afterwards.
func (s *AuthService) SignIn(ctx context.Context, w http.ResponseWriter, params SignInParams) *domain.Result {
	user, err := s.sessions.Establish(ctx, w, params.IDToken)
	if err != nil {
		return &domain.Result{
			Success: false,
			Message: s.signInFailureMessage(ctx, params.Email, err),
		}
	}

	if err := s.producer.PublishUserSignedIn(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to publish sign-in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID))

	return &domain.Result{
		Success: true,
		Message: MsgSignInSuccess,
	}
}

// SignOut deletes the session cookie. No provider-side revocation happens.
func (s *AuthService) SignOut(w http.ResponseWriter) {
	s.sessions.End(w)
}

// CurrentUser resolves the request's session cookie to a user record, or nil.
func (s *AuthService) CurrentUser(ctx context.Context, r *http.Request) *domain.User {
	return s.sessions.CurrentUser(ctx, r)
}

// IsAuthenticated reports whether the request carries a resolvable session.
func (s *AuthService) IsAuthenticated(ctx context.Context, r *http.Request) bool {
	return s.sessions.IsAuthenticated(ctx, r)
}

func (s *AuthService) signInFailureMessage(ctx context.Context, email string, err error) string {
	if errors.Is(err, apperrors.ErrNotFound) {
		// Credential exists but the profile record does not. Account
		// creation is two non-atomic steps, so this case is reported
		// explicitly instead of being folded into the generic failure.
		s.logger.WarnContext(ctx, "sign-in for credential without profile record",
			slog.String("email", email),
		)
		return MsgAccountNotFound
	}

	switch identity.KindOf(err) {
	case identity.KindInvalidToken:
		return MsgInvalidToken
	case identity.KindExpiredToken:
		return MsgExpiredToken
	default:
		s.logger.ErrorContext(ctx, "session establishment failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return MsgSignInFailed
	}
}
