package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "github.com/imaginify/backend/internal/core"
	"github.com/imaginify/backend/internal/core/domain"
)

// mockUserRepo implements domain.UserRepository for testing.
type mockUserRepo struct {
	CreateFunc        func(ctx context.Context, params domain.CreateUserParams) (*domain.User, error)
	GetFunc           func(ctx context.Context, clerkID string) (*domain.User, error)
	UpdateFunc        func(ctx context.Context, clerkID string, params domain.UpdateUserParams) (*domain.User, error)
	DeleteFunc        func(ctx context.Context, clerkID string) (*domain.User, error)
	AdjustCreditsFunc func(ctx context.Context, clerkID string, delta int64) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByExternalID(ctx context.Context, clerkID string) (*domain.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, clerkID)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, clerkID string, params domain.UpdateUserParams) (*domain.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, clerkID, params)
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, clerkID string) (*domain.User, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, clerkID)
	}
	return nil, nil
}

func (m *mockUserRepo) AdjustCredits(ctx context.Context, clerkID string, delta int64) (*domain.User, error) {
	if m.AdjustCreditsFunc != nil {
		return m.AdjustCreditsFunc(ctx, clerkID, delta)
	}
	return nil, nil
}

// fakeUserStore is a stateful in-memory repository honoring the same
// contracts as the Mongo implementation, including the atomic credit
// increment.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*domain.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ClerkID == params.ClerkID || u.Email == params.Email {
			out := *u
			return &out, nil
		}
	}
	u := &domain.User{
		ClerkID:   params.ClerkID,
		Email:     params.Email,
		Username:  params.Username,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Photo:     params.Photo,
	}
	f.users[params.ClerkID] = u
	out := *u
	return &out, nil
}

func (f *fakeUserStore) GetByExternalID(ctx context.Context, clerkID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[clerkID]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, clerkID string, params domain.UpdateUserParams) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[clerkID]
	if !ok {
		return nil, nil
	}
	u.Username = params.Username
	u.FirstName = params.FirstName
	u.LastName = params.LastName
	u.Photo = params.Photo
	out := *u
	return &out, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, clerkID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[clerkID]
	if !ok {
		return nil, nil
	}
	delete(f.users, clerkID)
	return u, nil
}

func (f *fakeUserStore) AdjustCredits(ctx context.Context, clerkID string, delta int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[clerkID]
	if !ok {
		return nil, nil
	}
	u.CreditBalance += delta
	out := *u
	return &out, nil
}

func TestCreateUserIdempotent(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	params := domain.CreateUserParams{
		ClerkID:  "u1",
		Email:    "a@b.com",
		Username: "a",
		Photo:    domain.DefaultPhotoURL,
	}

	first, err := svc.CreateUser(context.Background(), params)
	require.NoError(t, err)

	second, err := svc.CreateUser(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second, "both calls must return equivalent data")
	assert.Len(t, store.users, 1, "two creates must yield one stored record")
}

func TestCreateUserSameEmailDifferentID(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	first, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	// Same email under a different provider id still resolves to the
	// existing record.
	second, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u2", Email: "a@b.com"})
	require.NoError(t, err)

	assert.Equal(t, first.ClerkID, second.ClerkID)
	assert.Len(t, store.users, 1)
}

func TestCreateUserPersistenceFailure(t *testing.T) {
	storeErr := errors.New("write concern error")
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
			return nil, storeErr
		},
	}
	svc := NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrPersistence)
	// The underlying error keeps its identity for diagnostics.
	assert.ErrorIs(t, err, storeErr)
}

func TestCreateUserKeepsGatewayErrorIdentity(t *testing.T) {
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
			return nil, fmt.Errorf("ensure connection: %w", database.ErrConnect)
		},
	}
	svc := NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, database.ErrConnect, "connection failures stay classifiable")
}

func TestCreateUserNilRecord(t *testing.T) {
	// A repository returning (nil, nil) from Create is a contract
	// violation; it must surface as an error, never a nil user.
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
			return nil, nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com"})
	require.Nil(t, user)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByIDPropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	repo := &mockUserRepo{
		GetFunc: func(ctx context.Context, clerkID string) (*domain.User, error) {
			return nil, storeErr
		},
	}
	svc := NewUserService(repo)

	// A database error must never look like absence.
	_, err := svc.GetUserByID(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, storeErr)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.UpdateUser(context.Background(), "missing", domain.UpdateUserParams{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.DeleteUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserReturnsDeletedRecord(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com", Username: "a"})
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", deleted.ClerkID)
	assert.Equal(t, "a@b.com", deleted.Email)
	assert.Empty(t, store.users)
}

func TestAdjustCreditsNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.AdjustCredits(context.Background(), "missing", -5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdjustCreditsConcurrent(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserParams{ClerkID: "u1", Email: "a@b.com"})
	require.NoError(t, err)
	store.users["u1"].CreditBalance = 10

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustCredits(context.Background(), "u1", -5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := svc.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.CreditBalance, "two concurrent -5 adjustments from 10 must land on 0")
}
