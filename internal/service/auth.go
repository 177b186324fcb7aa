package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailTaken               = errors.New("user with this email already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrCurrentPasswordRequired  = errors.New("current password is required to set a new password")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
)

// UserStore is the persistence boundary the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, user *model.User) (*model.User, error)
}

// AuthService handles registration, login and profile management.
type AuthService struct {
	store     UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a new user account and returns an auth token. Emails
// are matched case-insensitively: the address is lowercased before it is
// stored, so the unique index catches any casing variant.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
	}

	created, err := s.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.authResponse(created)
}

// Login authenticates a user and returns a fresh auth token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GetProfile retrieves the profile for an authenticated identity.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.PublicUser(user), nil
}

// UpdateProfile applies a partial profile update. A name change needs no
// password; setting a new password requires the current one to verify
// against the stored hash. Omitted fields keep their values.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	if req.NewPassword != nil {
		if req.CurrentPassword == nil {
			return model.UserResponse{}, ErrCurrentPasswordRequired
		}

		match, err := crypto.VerifyPassword(*req.CurrentPassword, user.PasswordHash)
		if err != nil {
			return model.UserResponse{}, err
		}
		if !match {
			return model.UserResponse{}, ErrCurrentPasswordIncorrect
		}

		hash, err := crypto.HashPassword(*req.NewPassword)
		if err != nil {
			return model.UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	updated, err := s.store.Update(ctx, user)
	if err != nil {
		return model.UserResponse{}, err
	}

	return model.PublicUser(updated), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(user.ID, user.Email, user.Name, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  model.PublicUser(user),
	}, nil
}

// NormalizeEmail lowercases and trims an email address so lookups and the
// unique constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
