package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"barefoot/internal/model"
	"barefoot/pkg/logger"

	"github.com/google/uuid"
)

const (
	DevUserID    = "dev-user-id"
	DevUserEmail = "dev@barefoot.local"
)

//go:generate mockgen -source=auth.go -destination=./auth_mock.go -package=service
type UserStorage interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, encoded string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

type AuthService struct {
	users     UserStorage
	hasher    PasswordHasher
	tokens    TokenIssuer
	devSecret string
}

// NewAuthService wires the identity flow. An empty devSecret disables DevToken.
func NewAuthService(users UserStorage, hasher PasswordHasher, tokens TokenIssuer, devSecret string) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		devSecret: devSecret,
	}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	req.Email = model.NormalizeEmail(req.Email)
	if verr := validateStruct(req); !verr.empty() {
		return AuthResult{}, verr
	}

	_, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return AuthResult{}, ErrDuplicateIdentity
	case !errors.Is(err, ErrNotFound):
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return AuthResult{}, err
	}

	logger.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return s.issue(user.ID, user.Email)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := s.hasher.Compare(req.Password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("comparing password: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user.ID, user.Email)
}

// DevToken issues a token for a fixed development identity when secret matches.
func (s *AuthService) DevToken(ctx context.Context, req DevTokenRequest) (AuthResult, error) {
	if s.devSecret == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.devSecret)) != 1 {
		logger.FromContext(ctx).Warn("dev token rejected")
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(DevUserID, DevUserEmail)
}

func (s *AuthService) issue(userID, email string) (AuthResult, error) {
	token, exp, err := s.tokens.Issue(userID, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issuing token: %w", err)
	}
	return AuthResult{
		ID:        userID,
		Email:     email,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}
