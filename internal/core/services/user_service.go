package services

import (
	"context"
	"fmt"
	"log"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/pkg/password"
)

// UserService handles user management. All operations here are admin-only;
// the routes enforce that.
type UserService struct {
	userRepo repositories.UserRepository
	deptRepo repositories.DepartmentRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, deptRepo repositories.DepartmentRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		deptRepo: deptRepo,
	}
}

// CreateUserInput represents user creation input
type CreateUserInput struct {
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required,max=100"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required"`
	DepartmentID uint   `json:"department_id" validate:"required"`
}

// UpdateUserInput represents a partial user update. Nil means unchanged.
type UpdateUserInput struct {
	FullName     *string `json:"full_name"`
	Role         *string `json:"role"`
	DepartmentID *uint   `json:"department_id"`
	Password     *string `json:"password"`
	IsActive     *bool   `json:"is_active"`
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if !domain.ValidRole(domain.Role(input.Role)) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	if _, err := s.deptRepo.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrDuplicateResource)
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        input.Email,
		FullName:     input.FullName,
		Password:     hashedPassword,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return s.userRepo.GetByID(ctx, user.ID)
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// Update applies a partial update to a user
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !domain.ValidRole(domain.Role(*input.Role)) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *input.Role)
		}
		user.Role = *input.Role
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.DepartmentID != nil {
		if _, err := s.deptRepo.GetByID(ctx, *input.DepartmentID); err != nil {
			return nil, err
		}
		user.DepartmentID = *input.DepartmentID
	}
	if input.Password != nil {
		if !password.ValidatePassword(*input.Password) {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
		}
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// Deactivate marks a user inactive. Users are never hard-deleted; their
// name lives on in audit entries.
func (s *UserService) Deactivate(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	log.Printf("✅ User %d deactivated", id)
	return nil
}
