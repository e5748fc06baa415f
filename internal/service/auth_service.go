package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notekeep/internal/auth"
	"notekeep/internal/cache"
	apperrors "notekeep/internal/errors"
	"notekeep/internal/mailer"
	"notekeep/internal/model"
	"notekeep/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// AuthService handles signup, signin and the password reset flow.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (token string, user *model.User, err error)
	SignIn(ctx context.Context, email, password string) (token string, user *model.User, err error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtService    *auth.JWTService
	mailer        mailer.Mailer
	cache         *cache.Client
	resetTokenTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, m mailer.Mailer, cache *cache.Client, resetTokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:      userRepo,
		jwtService:    jwtService,
		mailer:        m,
		cache:         cache,
		resetTokenTTL: resetTokenTTL,
	}
}

func (s *authService) profileCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("profile:%s", id.String())
}

// SignUp registers a new user and returns a signed token for the session.
// The email must not be registered already; matching is exact, case-sensitive
// as stored.
func (s *authService) SignUp(ctx context.Context, email, password, name string) (string, *model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// SignIn authenticates a user. Unknown email and wrong password yield the same
// error so callers cannot probe which accounts exist.
func (s *authService) SignIn(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// ForgotPassword issues a fresh reset token, overwriting any previous one, and
// hands it to the mailer. Returns ErrUserNotFound for unknown emails; the HTTP
// layer replies identically either way so the existence of an account is not
// revealed to the caller.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	token := uuid.NewString()
	expires := time.Now().Add(s.resetTokenTTL)
	user.PasswordResetToken = &token
	user.PasswordResetExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword exchanges a valid, unexpired reset token for a new password.
// The token and its expiry are cleared on success.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return fmt.Errorf("find reset token: %w", err)
	}
	if user.PasswordResetExpires == nil || user.PasswordResetExpires.Before(time.Now()) {
		return apperrors.ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	_ = s.cache.Delete(ctx, s.profileCacheKey(user.ID))
	return nil
}

// GetProfile retrieves a user by ID with caching. The model's JSON projection
// already excludes the password hash and reset fields.
func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.profileCacheKey(userID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.profileCacheKey(userID), payload, profileCacheTTL)
	}
	return user, nil
}
