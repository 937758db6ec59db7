package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
)

// DepartmentService handles department management
type DepartmentService struct {
	deptRepo repositories.DepartmentRepository
}

// NewDepartmentService creates a new department service
func NewDepartmentService(deptRepo repositories.DepartmentRepository) *DepartmentService {
	return &DepartmentService{deptRepo: deptRepo}
}

// CreateDepartmentInput represents department creation input
type CreateDepartmentInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,max=10"`
	Description string `json:"description"`
	IsMain      bool   `json:"is_main"`
}

// UpdateDepartmentInput represents a partial department update
type UpdateDepartmentInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsMain      *bool   `json:"is_main"`
	IsActive    *bool   `json:"is_active"`
}

// Create creates a new department. The code is uppercased; it becomes part
// of every registry number the department issues.
func (s *DepartmentService) Create(ctx context.Context, input *CreateDepartmentInput) (*models.Department, error) {
	if input.Name == "" || input.Code == "" {
		return nil, fmt.Errorf("%w: name and code are required", domain.ErrInvalidInput)
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	exists, err := s.deptRepo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: department name already in use", domain.ErrDuplicateResource)
	}

	exists, err = s.deptRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: department code already in use", domain.ErrDuplicateResource)
	}

	dept := &models.Department{
		Name:        input.Name,
		Code:        code,
		Description: input.Description,
		IsMain:      input.IsMain,
		IsActive:    true,
	}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}

	log.Printf("✅ Department created: %s (%s)", dept.Name, dept.Code)
	return dept, nil
}

// Get returns a department by ID
func (s *DepartmentService) Get(ctx context.Context, id uint) (*models.Department, error) {
	return s.deptRepo.GetByID(ctx, id)
}

// List lists departments
func (s *DepartmentService) List(ctx context.Context, activeOnly bool) ([]*models.Department, error) {
	return s.deptRepo.List(ctx, activeOnly)
}

// Update applies a partial update. The code is immutable: issued registry
// numbers embed it.
func (s *DepartmentService) Update(ctx context.Context, id uint, input *UpdateDepartmentInput) (*models.Department, error) {
	dept, err := s.deptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != dept.Name {
		exists, err := s.deptRepo.ExistsByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: department name already in use", domain.ErrDuplicateResource)
		}
		dept.Name = *input.Name
	}
	if input.Description != nil {
		dept.Description = *input.Description
	}
	if input.IsMain != nil {
		dept.IsMain = *input.IsMain
	}
	if input.IsActive != nil {
		if dept.IsMain && !*input.IsActive {
			return nil, fmt.Errorf("%w: the main office cannot be deactivated", domain.ErrInvalidInput)
		}
		dept.IsActive = *input.IsActive
	}

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}
