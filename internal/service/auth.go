package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/todotofu/todotofu/backend/internal/auth"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

// BcryptCost is the work factor of stored password hashes
const BcryptCost = 12

// TokenIssuer signs access tokens for an identity
type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	defaults Defaults
	cost     int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, defaults Defaults) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		defaults: defaults,
		cost:     BcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	username := normalizeUsername(req.Username)
	verr := &ValidationError{}
	if len(username) < 3 {
		verr.add("username", CodeInvalid, "username must be at least 3 characters")
	}
	if len(req.Password) < 6 {
		verr.add("password", CodeInvalid, "password must be at least 6 characters")
	}
	if !strings.Contains(req.Email, "@") {
		verr.add("email", CodeInvalid, "email must be a valid address")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("username %q is taken: %w", username, ErrConflict)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &models.User{
		Username:       username,
		Email:          strings.TrimSpace(req.Email),
		Name:           strings.TrimSpace(req.Name),
		ProfilePicture: req.ProfilePicture,
		PasswordHash:   string(hash),
		Preferences:    s.defaults.Preferences(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username %q is taken: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Ctx(ctx).Info("user registered", logger.String("user_id", user.ID))
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, normalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.respond(user)
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user", userID)
	}
	user.Preferences = s.defaults.fill(user.Preferences)
	return user, nil
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
