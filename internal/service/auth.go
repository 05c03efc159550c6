package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iMallco/iMall/internal/crypto"
	"github.com/iMallco/iMall/internal/model"
	"github.com/iMallco/iMall/internal/notify"
	"github.com/iMallco/iMall/internal/repository"
)

const resetPasswordMessage = "If the email exists, a password reset link has been sent"

// fallbackDummyHash is a bcrypt cost-10 hash compared against when the
// configured hasher cannot produce its own dummy hash.
const fallbackDummyHash = "$2b$10$k5gSIg.OSy8yqoJKPCR6k.aBtQg2IJor5Wo1HNCi2Ad8TOgDdwhne"

// ResetNotifier accepts password reset notices for delivery.
type ResetNotifier interface {
	Enqueue(notice notify.PasswordResetNotice) bool
}

// AuthService handles authentication business logic.
type AuthService struct {
	store    repository.UserStore
	hasher   crypto.PasswordHasher
	tokens   *crypto.TokenIssuer
	notifier ResetNotifier
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. notifier may be nil.
func NewAuthService(store repository.UserStore, hasher crypto.PasswordHasher, tokens *crypto.TokenIssuer, notifier ResetNotifier) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		now:      time.Now,
	}
}

// SignUp creates a new account with no user type and returns an auth token.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (model.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	_, err := s.store.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return model.AuthResponse{}, ErrDuplicateEmail
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	// Create is the authoritative uniqueness check; the lookup above only
	// saves a hash on the common path.
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrDuplicateEmail
		}
		return model.AuthResponse{}, fmt.Errorf("creating user: %w", err)
	}

	return s.authResponse(user)
}

// SignIn authenticates a user and returns an auth token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same hashing work as a real comparison.
			if _, err := s.hasher.Verify(req.Password, s.dummyPasswordHash()); err != nil {
				slog.WarnContext(ctx, "dummy password comparison failed", "error", err)
			}
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, fmt.Errorf("looking up email: %w", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// SetUserType records the user's onboarding choice. Invalid types never touch the store.
func (s *AuthService) SetUserType(ctx context.Context, req model.SetUserTypeRequest) (model.UserEnvelope, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := validateRequest(req); err != nil {
		return model.UserEnvelope{}, err
	}

	userType := req.UserType
	user, err := s.store.Update(ctx, req.UserID, model.UserUpdate{UserType: &userType})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserEnvelope{}, ErrUserNotFound
		}
		return model.UserEnvelope{}, fmt.Errorf("updating user type: %w", err)
	}

	return model.UserEnvelope{Success: true, User: user.ToResponse()}, nil
}

// ResetPassword answers identically whether or not the email is registered.
// Registered addresses get a notice queued for out-of-band delivery.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (model.MessageResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return model.MessageResponse{}, err
	}

	resp := model.MessageResponse{Success: true, Message: resetPasswordMessage}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.ErrorContext(ctx, "reset password lookup failed", "error", err)
		}
		return resp, nil
	}

	if s.notifier != nil {
		s.notifier.Enqueue(notify.PasswordResetNotice{
			UserID:      user.ID,
			Email:       user.Email,
			RequestedAt: s.now().UTC(),
		})
	}

	return resp, nil
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserEnvelope, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserEnvelope{}, ErrUserNotFound
		}
		return model.UserEnvelope{}, err
	}

	return model.UserEnvelope{Success: true, User: user.ToResponse()}, nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	return model.AuthResponse{
		Success: true,
		User:    user.ToResponse(),
		Token:   token,
	}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("imall-dummy-password")
		if err != nil {
			slog.Warn("dummy hash generation failed, using fallback", "error", err)
			hash = fallbackDummyHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
