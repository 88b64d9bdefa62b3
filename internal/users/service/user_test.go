package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	userserrors "silvalley/internal/users/errors"
	"silvalley/internal/users/validator"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	updateRoleFunc  func(ctx context.Context, id string, role string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "66b000000000000000000010"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, id)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, email)
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	return []*model.User{}, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, user *model.User) error {
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id string, role string) error {
	if m.updateRoleFunc != nil {
		return m.updateRoleFunc(ctx, id, role)
	}
	return nil
}

func newUserService(repo *mockUserRepository) UserService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewUserService(repo, validator.NewUserValidator(), tokens, cfg)
}

func TestRegister(t *testing.T) {
	repo := &mockUserRepository{}
	var created *model.User
	repo.createFunc = func(ctx context.Context, user *model.User) error {
		created = user
		user.ID = "66b000000000000000000010"
		return nil
	}

	svc := newUserService(repo)

	resp, err := svc.Register(context.Background(), &model.Registration{
		Email:    "  Jane@Example.COM ",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Email != "jane@example.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if created.Role != model.RoleUser {
		t.Errorf("new accounts must start as plain users, got %q", created.Role)
	}
	if created.PasswordHash == "hunter2hunter2" || created.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a session token")
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		reg  model.Registration
	}{
		{"bad email", model.Registration{Email: "not-an-email", Name: "Jane Doe", Password: "hunter2hunter2"}},
		{"short password", model.Registration{Email: "jane@example.com", Name: "Jane Doe", Password: "short"}},
		{"missing name", model.Registration{Email: "jane@example.com", Password: "hunter2hunter2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(&mockUserRepository{
				createFunc: func(ctx context.Context, user *model.User) error {
					t.Error("repository must not be called when validation fails")
					return nil
				},
			})

			_, err := svc.Register(context.Background(), &tt.reg)
			if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService(&mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return fmt.Errorf("%w: %s", userserrors.ErrDuplicateEmail, user.Email)
		},
	})

	_, err := svc.Register(context.Background(), &model.Registration{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	stored := &model.User{
		ID:           "66b000000000000000000010",
		Email:        "jane@example.com",
		Name:         "Jane Doe",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}

	tests := []struct {
		name     string
		email    string
		password string
		found    bool
		wantCode string
	}{
		{"valid credentials", "jane@example.com", "hunter2hunter2", true, ""},
		{"email case is ignored", "JANE@example.com", "hunter2hunter2", true, ""},
		{"wrong password", "jane@example.com", "wrong-password", true, apperrors.CodeUnauthorized},
		{"unknown email", "nobody@example.com", "hunter2hunter2", false, apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(&mockUserRepository{
				findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
					if tt.found {
						return stored, nil
					}
					return nil, fmt.Errorf("%w: %s", userserrors.ErrNotFound, email)
				},
			})

			resp, err := svc.Login(context.Background(), &model.Credentials{
				Email:    tt.email,
				Password: tt.password,
			})
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a session token")
				}
				return
			}
			if apperrors.AsAppError(err).Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestSetRole(t *testing.T) {
	admin := &auth.Claims{UserID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}
	user := &auth.Claims{UserID: "user-1", Email: "user@example.com", Role: model.RoleUser}

	tests := []struct {
		name     string
		actor    *auth.Claims
		targetID string
		role     string
		wantCode string
	}{
		{"admin promotes a user", admin, "user-2", model.RoleAdmin, ""},
		{"non-admin rejected", user, "user-2", model.RoleAdmin, apperrors.CodeForbidden},
		{"unknown role rejected", admin, "user-2", "owner", apperrors.CodeInvalidInput},
		{"self-change rejected", admin, "admin-1", model.RoleUser, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(&mockUserRepository{})

			err := svc.SetRole(context.Background(), tt.actor, tt.targetID, tt.role)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if apperrors.AsAppError(err).Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestUpdateProfile_InvalidPhoneRejected(t *testing.T) {
	svc := newUserService(&mockUserRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{
				ID:    id,
				Email: "jane@example.com",
				Name:  "Jane Doe",
				Role:  model.RoleUser,
			}, nil
		},
	})

	_, err := svc.UpdateProfile(context.Background(), "66b000000000000000000010", &model.ProfileUpdate{
		Phone: "not a phone",
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
