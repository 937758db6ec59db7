package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"townhall-docflow/internal/adapters/http/middleware"
	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/core/services"
	"townhall-docflow/internal/pkg/pagination"
	"townhall-docflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles document workflow endpoints
type DocumentHandler struct {
	docService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
	}
}

// documentError maps workflow errors to HTTP responses
func documentError(c *fiber.Ctx, err error, fallback string) error {
	var transitionErr *domain.InvalidTransitionError
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return response.NotFound(c, "Document not found")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have access to this document")
	case errors.Is(err, domain.ErrDocumentArchived):
		return response.Conflict(c, "Document is archived and read-only")
	case errors.Is(err, domain.ErrNoOpForward):
		return response.Conflict(c, "Document is already held by the target department")
	case errors.As(err, &transitionErr):
		return response.Conflict(c, transitionErr.Error())
	case errors.Is(err, domain.ErrReasonRequired):
		return response.BadRequest(c, "A reason is required for this status change")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, domain.ErrUserInactive):
		return response.BadRequest(c, "User account is inactive")
	case errors.Is(err, domain.ErrDepartmentNotFound):
		return response.NotFound(c, "Department not found")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// CreateDocument handles creating a new document
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.docService.Create(c.Context(), p, &input)
	if err != nil {
		return documentError(c, err, "Failed to create document")
	}

	return response.Created(c, "Document created successfully", doc.ToResponse())
}

// ListDocuments handles listing documents visible to the caller
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := repositories.DocumentFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if v, err := strconv.ParseUint(c.Query("creator_id"), 10, 32); err == nil {
		id := uint(v)
		filter.CreatorID = &id
	}
	if v, err := strconv.ParseUint(c.Query("assigned_to"), 10, 32); err == nil {
		id := uint(v)
		filter.AssignedTo = &id
	}
	if v, err := strconv.ParseUint(c.Query("department_id"), 10, 32); err == nil {
		id := uint(v)
		filter.DepartmentID = &id
	}

	docs, total, err := h.docService.List(c.Context(), p, filter)
	if err != nil {
		return documentError(c, err, "Failed to list documents")
	}

	responses := make([]*models.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, doc.ToResponse())
	}

	return response.Success(c, "Documents retrieved successfully", pagination.NewResponse(responses, params, total))
}

// GetDocument handles getting a document by ID
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doc, err := h.docService.Get(c.Context(), p, c.Params("id"))
	if err != nil {
		return documentError(c, err, "Failed to get document")
	}

	return response.Success(c, "Document retrieved successfully", doc.ToResponse())
}

// GetDocumentByNumber handles lookup by registry number
func (h *DocumentHandler) GetDocumentByNumber(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doc, err := h.docService.GetByNumber(c.Context(), p, c.Params("number"))
	if err != nil {
		return documentError(c, err, "Failed to get document")
	}

	return response.Success(c, "Document retrieved successfully", doc.ToResponse())
}

// UpdateDocument handles a partial field update
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.docService.Update(c.Context(), p, c.Params("id"), &input)
	if err != nil {
		return documentError(c, err, "Failed to update document")
	}

	return response.Success(c, "Document updated successfully", doc.ToResponse())
}

// ForwardDocument handles routing a document to another department
func (h *DocumentHandler) ForwardDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ForwardDocumentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ToDepartmentID == 0 {
		return response.BadRequest(c, "Target department is required")
	}

	doc, err := h.docService.Forward(c.Context(), p, c.Params("id"), &input)
	if err != nil {
		return documentError(c, err, "Failed to forward document")
	}

	return response.Success(c, "Document forwarded successfully", doc.ToResponse())
}

// ChangeStatus handles advancing the document workflow status
func (h *DocumentHandler) ChangeStatus(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangeStatusInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.NewStatus == "" {
		return response.BadRequest(c, "New status is required")
	}

	doc, err := h.docService.ChangeStatus(c.Context(), p, c.Params("id"), &input)
	if err != nil {
		return documentError(c, err, "Failed to change document status")
	}

	return response.Success(c, "Document status changed successfully", doc.ToResponse())
}

// AssignRequest represents assignment request body
type AssignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

// AssignDocument handles assigning a document to a user
func (h *DocumentHandler) AssignDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.AssigneeID == 0 {
		return response.BadRequest(c, "Assignee is required")
	}

	doc, err := h.docService.Assign(c.Context(), p, c.Params("id"), req.AssigneeID)
	if err != nil {
		return documentError(c, err, "Failed to assign document")
	}

	return response.Success(c, "Document assigned successfully", doc.ToResponse())
}

// RespondRequest represents response request body
type RespondRequest struct {
	Comment string `json:"comment"`
}

// RespondDocument handles recording a response on a document
func (h *DocumentHandler) RespondDocument(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	doc, err := h.docService.Respond(c.Context(), p, c.Params("id"), req.Comment)
	if err != nil {
		return documentError(c, err, "Failed to record response")
	}

	return response.Success(c, "Response recorded successfully", doc.ToResponse())
}

// RecordView handles the explicit view-tracking endpoint
func (h *DocumentHandler) RecordView(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.docService.RecordView(c.Context(), p, c.Params("id")); err != nil {
		return documentError(c, err, "Failed to record view")
	}

	return response.Success(c, "View recorded", nil)
}

// GetTimeline handles reading a document's audit trail
func (h *DocumentHandler) GetTimeline(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter, err := parseTimelineFilter(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	entries, err := h.docService.Timeline(c.Context(), p, c.Params("id"), filter)
	if err != nil {
		return documentError(c, err, "Failed to get document history")
	}

	return response.Success(c, "Document history retrieved successfully", entries)
}

// parseTimelineFilter reads the audit trail query filters: action plus an
// optional RFC 3339 from/to time range
func parseTimelineFilter(c *fiber.Ctx) (repositories.TimelineFilter, error) {
	filter := repositories.TimelineFilter{
		Action: c.Query("action"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'from' timestamp, expected RFC 3339")
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid 'to' timestamp, expected RFC 3339")
		}
		filter.To = &t
	}
	return filter, nil
}
