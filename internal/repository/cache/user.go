package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mwarzecha/authgate/internal/domain"
	"github.com/mwarzecha/authgate/internal/repository"
)

const keyPrefix = "user:"

// UserRepository is a read-through Redis cache in front of another
// repository.UserRepository. Cache failures degrade to the underlying store;
// a broken cache never fails a lookup.
type UserRepository struct {
	next   repository.UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewUserRepository wraps next with a Redis cache.
func NewUserRepository(next repository.UserRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Create inserts through to the underlying store and primes the cache.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	r.set(ctx, user)
	return nil
}

// GetByID serves from the cache when possible, falling back to the
// underlying store and priming the cache on a miss.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.get(ctx, id); ok {
		return user, nil
	}

	user, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.set(ctx, user)
	return user, nil
}

// GetByEmail always hits the underlying store. Email lookups are rare and
// keeping a second key per user in sync is not worth it.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.next.GetByEmail(ctx, email)
}

// Delete removes the record from the underlying store and invalidates the
// cache entry.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, id string) (*domain.User, bool) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "cache read failed",
				slog.String("user_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		r.logger.WarnContext(ctx, "cache entry corrupt",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return &user, true
}

func (r *UserRepository) set(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(user)
	if err != nil {
		r.logger.WarnContext(ctx, "cache marshal failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := r.client.Set(ctx, keyPrefix+user.ID, data, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache write failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
