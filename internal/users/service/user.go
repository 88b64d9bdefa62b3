package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userserrors "silvalley/internal/users/errors"
	"silvalley/internal/users/repository"
	"silvalley/internal/users/validator"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"
	"silvalley/pkg/sanitizer"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, reg *model.Registration) (*model.AuthResponse, error)
	Login(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.User, error)
	GetAll(ctx context.Context, actor *auth.Claims, limit int, offset int64) ([]*model.User, int64, error)
	SetRole(ctx context.Context, actor *auth.Claims, id string, role string) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *auth.TokenService
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	tokens *auth.TokenService,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, reg *model.Registration) (*model.AuthResponse, error) {
	reg.Email = normalizeEmail(reg.Email)
	reg.Name = sanitizer.NormalizeName(reg.Name)

	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Registration validation failed",
			"email", reg.Email,
			"error", err,
		)
		return nil, apperrors.Validation("Registration validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to process registration", err)
	}

	user := &model.User{
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user",
			"email", user.Email,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token after registration",
			"user_id", user.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User registered",
		"id", user.ID,
		"email", user.Email,
	)

	return &model.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same response so the endpoint cannot be used to enumerate accounts.
func (s *userService) Login(ctx context.Context, creds *model.Credentials) (*model.AuthResponse, error) {
	creds.Email = normalizeEmail(creds.Email)

	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, apperrors.Validation("Login validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	user, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up user for login",
			"email", creds.Email,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to process login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.cfg.Log.Warn("Failed login attempt", "email", creds.Email)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token",
			"user_id", user.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID)

	return &model.AuthResponse{Token: token, User: user}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to get user",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.sanitizeProfileUpdate(updates)

	if err := s.validator.ValidateProfileUpdate(updates); err != nil {
		s.cfg.Log.Warn("Profile update validation failed",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Validation("Profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if updates.Name != "" {
		user.Name = updates.Name
	}
	if updates.Phone != "" {
		user.Phone = updates.Phone
	}
	if updates.Company != "" {
		user.Company = updates.Company
	}
	if updates.JobTitle != "" {
		user.JobTitle = updates.JobTitle
	}

	if err := s.repo.UpdateProfile(ctx, userID, user); err != nil {
		s.cfg.Log.Error("Failed to update profile",
			"user_id", userID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	s.cfg.Log.Info("Profile updated", "user_id", userID)

	return user, nil
}

func (s *userService) GetAll(ctx context.Context, actor *auth.Claims, limit int, offset int64) ([]*model.User, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if actor.Role != model.RoleAdmin {
		return nil, 0, apperrors.Forbidden("Admin access required")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count users", "error", err)
		return nil, 0, apperrors.Internal("Failed to count users", err)
	}

	users, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list users",
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to retrieve users", err)
	}

	return users, count, nil
}

// SetRole promotes or demotes a user. Admins cannot change their own role, so
// the last admin can never lock the system out by accident.
func (s *userService) SetRole(ctx context.Context, actor *auth.Claims, id string, role string) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if actor.Role != model.RoleAdmin {
		return apperrors.Forbidden("Admin access required")
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return apperrors.InvalidInput(fmt.Sprintf("invalid role: %s", role))
	}
	if actor.UserID == id {
		return apperrors.Conflict("Admins cannot change their own role")
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		s.cfg.Log.Error("Failed to update role",
			"user_id", id,
			"role", role,
			"error", err,
		)
		return apperrors.Internal("Failed to update role", err)
	}

	s.cfg.Log.Info("User role updated",
		"user_id", id,
		"role", role,
		"updated_by", actor.UserID,
	)

	return nil
}

func (s *userService) sanitizeProfileUpdate(updates *model.ProfileUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
		if updates.Phone == "" {
			// Keep a sentinel so validation reports the bad phone instead of
			// silently dropping it.
			updates.Phone = "invalid_phone"
		}
	}
	if updates.Company != "" {
		updates.Company = sanitizer.TrimAndNormalize(updates.Company)
	}
	if updates.JobTitle != "" {
		updates.JobTitle = sanitizer.TrimAndNormalize(updates.JobTitle)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
