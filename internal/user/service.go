package user

import (
	"context"
	"errors"
	"strings"

	"pantry-be/internal/apperror"
	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(userID, email, role string) (string, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Me(ctx context.Context) (*User, error)
	// EnsureAdmin creates the admin account when the email is not yet taken.
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) issue(u *User) (*AuthResult, error) {
	token, err := s.tokens.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, apperror.Wrap(err, "generate token")
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.create(ctx, in.Name, in.Email, in.Password, RoleCustomer)
	if err != nil {
		log.Warn("register failed", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(in.Password, u.PasswordHash) {
		log.Info("login password mismatch", zap.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *service) Me(ctx context.Context) (*User, error) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, apperror.Unauthorized("authorization required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	u, err := s.create(ctx, name, email, password, RoleAdmin)
	if errors.Is(err, ErrEmailExists) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("admin account created", zap.String("user_id", u.ID))
	return nil
}
