package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"elegance/internal/auth"
	"elegance/internal/model"
	"elegance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// Register creates a new account and returns it with a fresh token.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, model.NewValidationError("invalid email format")
	}
	if len(req.Password) < 6 {
		return nil, model.NewValidationError("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")

	return s.respondWithToken(user)
}

// Login verifies credentials and returns the account with a fresh token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, model.NewValidationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}

	return s.respondWithToken(user)
}

// RefreshToken re-issues a token for an authenticated user to keep the
// session alive.
func (s *userService) RefreshToken(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	return s.respondWithToken(user)
}

// UpdateProfile updates name, email or password.
func (s *userService) UpdateProfile(ctx context.Context, user *model.User, req *model.UpdateUserRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	changed := false

	if req.Name != "" && req.Name != user.Name {
		user.Name = strings.TrimSpace(req.Name)
		changed = true
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !emailPattern.MatchString(email) {
			return nil, model.NewValidationError("invalid email format")
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if existing != nil {
				return nil, model.ErrEmailInUse
			}
			user.Email = email
			changed = true
		}
	}

	if req.Password != "" {
		if req.CurrentPassword == "" {
			return nil, model.NewValidationError("current password is required to change password")
		}
		if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			return nil, model.NewValidationError("current password is incorrect")
		}
		if len(req.Password) < 6 {
			return nil, model.NewValidationError("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
		changed = true
	}

	if changed {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", user.ID.String()).Msg("user profile updated")
	}

	return s.respondWithToken(user)
}

func (s *userService) respondWithToken(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{
		User:  user.PublicView(),
		Token: token,
	}, nil
}
