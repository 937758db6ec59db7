package handlers

import (
	"errors"
	"strconv"

	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/core/services"
	"townhall-docflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DepartmentHandler handles department directory endpoints
type DepartmentHandler struct {
	deptService *services.DepartmentService
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(deptService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{
		deptService: deptService,
	}
}

// ListDepartments handles listing departments
func (h *DepartmentHandler) ListDepartments(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active_only", false)

	depts, err := h.deptService.List(c.Context(), activeOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list departments")
	}

	return response.Success(c, "Departments retrieved successfully", depts)
}

// GetDepartment handles getting a department by ID
func (h *DepartmentHandler) GetDepartment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid department ID")
	}

	dept, err := h.deptService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrDepartmentNotFound) {
			return response.NotFound(c, "Department not found")
		}
		return response.InternalServerError(c, "Failed to get department")
	}

	return response.Success(c, "Department retrieved successfully", dept)
}

// CreateDepartment handles creating a department (admin only)
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	var input services.CreateDepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dept, err := h.deptService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrDuplicateResource):
			return response.Conflict(c, "Department name or code already in use")
		default:
			return response.InternalServerError(c, "Failed to create department")
		}
	}

	return response.Created(c, "Department created successfully", dept)
}

// UpdateDepartment handles updating a department (admin only)
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid department ID")
	}

	var input services.UpdateDepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dept, err := h.deptService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDepartmentNotFound):
			return response.NotFound(c, "Department not found")
		case errors.Is(err, domain.ErrDuplicateResource):
			return response.Conflict(c, "Department name already in use")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update department")
		}
	}

	return response.Success(c, "Department updated successfully", dept)
}
