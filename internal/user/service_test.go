package user

import (
	"context"
	"errors"
	"testing"

	"pantry-be/internal/auth"
	"pantry-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func newTestService() (*MockRepository, *auth.TokenManager, Service) {
	repo := new(MockRepository)
	tokens := auth.NewTokenManager("testsecret")
	return repo, tokens, NewService(repo, tokens)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: " Asha ", Email: "Asha@Example.com", Password: "password123"}

	t.Run("Success", func(t *testing.T) {
		repo, tokens, svc := newTestService()

		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "asha@example.com" &&
				u.Name == "Asha" &&
				u.Role == RoleCustomer &&
				CheckPasswordHash("password123", u.PasswordHash)
		})).Return(nil)

		res, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, RoleCustomer, res.User.Role)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.UserID)
		assert.Equal(t, "CUSTOMER", claims.Role)
		repo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("Create", ctx, mock.Anything).Return(ErrEmailExists)

		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		repo, _, svc := newTestService()

		_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "short"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	stored := &User{ID: "u1", Email: "asha@example.com", PasswordHash: hash, Role: RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		repo, tokens, svc := newTestService()
		repo.On("FindByEmail", ctx, "asha@example.com").Return(stored, nil)

		res, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "password123"})
		require.NoError(t, err)

		claims, err := tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("FindByEmail", ctx, "asha@example.com").Return(stored, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("FindByEmail", ctx, "asha@example.com").Return(nil, errors.New("db down"))

		_, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "password123"})
		assert.EqualError(t, err, "db down")
	})
}

func TestService_Me(t *testing.T) {
	repo, _, svc := newTestService()

	_, err := svc.Me(context.Background())
	assert.Error(t, err)

	ctx := utils.SetUserContext(context.Background(), "u1", "asha@example.com", "CUSTOMER")
	repo.On("GetByID", ctx, "u1").Return(&User{ID: "u1"}, nil)

	u, err := svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("FindByEmail", ctx, "admin@shop.test").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Role == RoleAdmin && u.Email == "admin@shop.test"
		})).Return(nil)

		require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "admin@shop.test", "changeme123"))
		repo.AssertExpectations(t)
	})

	t.Run("ExistingIsLeftAlone", func(t *testing.T) {
		repo, _, svc := newTestService()
		repo.On("FindByEmail", ctx, "admin@shop.test").Return(&User{ID: "u1"}, nil)

		require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "admin@shop.test", "changeme123"))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		repo, _, svc := newTestService()
		require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "", ""))
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}
