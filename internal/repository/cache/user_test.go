package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwarzecha/authgate/internal/domain"
	apperrors "github.com/mwarzecha/authgate/pkg/errors"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newCacheFixture(t *testing.T) (*UserRepository, *mockUserRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := new(mockUserRepository)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewUserRepository(next, client, time.Minute, logger), next, mr
}

func cachedUser() *domain.User {
	return &domain.User{
		ID:        "uid-1",
		Name:      "Alice Smith",
		Email:     "alice@example.com",
		CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestCache_GetByID_MissThenHit(t *testing.T) {
	repo, next, _ := newCacheFixture(t)
	u := cachedUser()

	// First call misses the cache and hits the store.
	next.On("GetByID", mock.Anything, u.ID).Return(u, nil).Once()

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Second call is served from the cache; the mock would panic on a
	// second store call.
	got, err = repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	next.AssertExpectations(t)
}

func TestCache_GetByID_StoreNotFound(t *testing.T) {
	repo, next, _ := newCacheFixture(t)

	next.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCache_Create_PrimesCache(t *testing.T) {
	repo, next, _ := newCacheFixture(t)
	u := cachedUser()

	next.On("Create", mock.Anything, u).Return(nil).Once()

	require.NoError(t, repo.Create(context.Background(), u))

	// The follow-up read needs no store call.
	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)

	next.AssertExpectations(t)
}

func TestCache_Delete_Invalidates(t *testing.T) {
	repo, next, mr := newCacheFixture(t)
	u := cachedUser()

	next.On("Create", mock.Anything, u).Return(nil).Once()
	next.On("Delete", mock.Anything, u.ID).Return(nil).Once()
	next.On("GetByID", mock.Anything, u.ID).Return(nil, apperrors.ErrNotFound).Once()

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, repo.Delete(context.Background(), u.ID))

	assert.False(t, mr.Exists("user:"+u.ID))

	_, err := repo.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	next.AssertExpectations(t)
}

func TestCache_GetByEmail_BypassesCache(t *testing.T) {
	repo, next, _ := newCacheFixture(t)
	u := cachedUser()

	next.On("GetByEmail", mock.Anything, u.Email).Return(u, nil).Twice()

	for range 2 {
		got, err := repo.GetByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	}

	next.AssertExpectations(t)
}

func TestCache_DegradesWhenRedisDown(t *testing.T) {
	repo, next, mr := newCacheFixture(t)
	u := cachedUser()

	mr.Close()

	next.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestCache_CorruptEntryFallsThrough(t *testing.T) {
	repo, next, mr := newCacheFixture(t)
	u := cachedUser()

	require.NoError(t, mr.Set("user:"+u.ID, "{not valid json"))

	next.On("GetByID", mock.Anything, u.ID).Return(u, nil).Once()

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	next.AssertExpectations(t)
}
