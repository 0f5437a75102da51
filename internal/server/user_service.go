package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// DBClient is the account storage UserService needs. Both *db.DB and the
// in-memory ats store satisfy it.
type DBClient interface {
	CreateUser(ctx context.Context, name, email, phone string, role types.Role) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// UserService handles registration, login and password changes.
type UserService struct {
	users     DBClient
	passwords *config.PasswordConfig
}

func NewUserService(users DBClient, passwords *config.PasswordConfig) *UserService {
	return &UserService{users: users, passwords: passwords}
}

// toAPIUser strips the password hash.
func toAPIUser(u *db.User) *types.User {
	if u == nil {
		return nil
	}
	return &types.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		PasswordSet: u.PasswordSet,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Register creates an employer or seeker account. The password is hashed
// before anything is written so a hashing failure leaves no orphan row.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.users.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, &types.ErrEmailAlreadyExists{Email: req.Email}
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.CreateUser(ctx, req.Name, req.Email, req.Phone, req.Role)
	var conflict *types.ErrConflict
	switch {
	case errors.As(err, &conflict):
		// a concurrent registration won
		return nil, &types.ErrEmailAlreadyExists{Email: req.Email}
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return nil, fmt.Errorf("failed to set password: %w", err)
	}

	created, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAPIUser(created), nil
}

// Login checks credentials. Unknown emails, accounts without a password and
// wrong passwords all yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.PasswordSet || !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &types.ErrInvalidCredentials{}
	}
	return toAPIUser(user), nil
}

// UpdatePassword replaces the password of userID after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, req *types.UpdatePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	user, err := s.mustGet(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return &types.ErrPasswordMismatch{}
	}

	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// mustGet loads a user, turning a missing row into ErrUserNotFound.
func (s *UserService) mustGet(ctx context.Context, id uuid.UUID) (*db.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	if user == nil {
		return nil, &types.ErrUserNotFound{UserID: id}
	}
	return user, nil
}
