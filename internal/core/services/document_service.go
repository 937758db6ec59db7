package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/core/policy"
	"townhall-docflow/internal/pkg/docnum"
)

// errNoChanges aborts a Mutate transaction when an update touches nothing.
// The service swallows it; no-op updates produce no audit entry.
var errNoChanges = errors.New("no changes")

// DocumentService handles the document routing workflow
type DocumentService struct {
	store       repositories.DocumentStore
	historyRepo repositories.HistoryRepository
	seqRepo     repositories.SequenceRepository
	deptRepo    repositories.DepartmentRepository
	userRepo    repositories.UserRepository
	notify      *NotificationService
}

// NewDocumentService creates a new document service
func NewDocumentService(
	store repositories.DocumentStore,
	historyRepo repositories.HistoryRepository,
	seqRepo repositories.SequenceRepository,
	deptRepo repositories.DepartmentRepository,
	userRepo repositories.UserRepository,
	notify *NotificationService,
) *DocumentService {
	return &DocumentService{
		store:       store,
		historyRepo: historyRepo,
		seqRepo:     seqRepo,
		deptRepo:    deptRepo,
		userRepo:    userRepo,
		notify:      notify,
	}
}

// CreateDocumentInput represents document creation input
type CreateDocumentInput struct {
	Title            string            `json:"title" validate:"required,max=200"`
	Description      string            `json:"description"`
	DocumentType     string            `json:"document_type" validate:"required"`
	Priority         string            `json:"priority"`
	AssignedToUserID *uint             `json:"assigned_to_user_id"`
	Deadline         *time.Time        `json:"deadline"`
	Tags             []string          `json:"tags"`
	CustomFields     map[string]string `json:"custom_fields"`
}

// UpdateDocumentInput represents a partial field update. Nil means unchanged.
type UpdateDocumentInput struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Priority      *string            `json:"priority"`
	Deadline      *time.Time         `json:"deadline"`
	ClearDeadline bool               `json:"clear_deadline"`
	Tags          *[]string          `json:"tags"`
	CustomFields  *map[string]string `json:"custom_fields"`
}

// ForwardDocumentInput represents document forwarding input
type ForwardDocumentInput struct {
	ToDepartmentID   uint    `json:"to_department_id" validate:"required"`
	AssignedToUserID *uint   `json:"assigned_to_user_id"`
	Comment          *string `json:"comment"`
}

// ChangeStatusInput represents a status change request
type ChangeStatusInput struct {
	NewStatus string  `json:"new_status" validate:"required"`
	Reason    *string `json:"reason"`
}

// Create registers a new document. The registry number is allocated from the
// per-(department, year) sequence, so two concurrent creators in the same
// department never collide.
func (s *DocumentService) Create(ctx context.Context, actor domain.Principal, input *CreateDocumentInput) (*models.Document, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !domain.ValidDocumentType(domain.DocumentType(input.DocumentType)) {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, input.DocumentType)
	}
	priority := input.Priority
	if priority == "" {
		priority = string(domain.PriorityMedium)
	}
	if !domain.ValidPriority(domain.DocumentPriority(priority)) {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, priority)
	}

	dept, err := s.deptRepo.GetByID(ctx, actor.DepartmentID)
	if err != nil {
		return nil, err
	}

	// A document starts in its creator's department, so an initial assignee
	// must work there too.
	if input.AssignedToUserID != nil {
		assignee, err := s.userRepo.GetByID(ctx, *input.AssignedToUserID)
		if err != nil {
			return nil, err
		}
		if !assignee.IsActive {
			return nil, domain.ErrUserInactive
		}
		if assignee.DepartmentID != actor.DepartmentID {
			return nil, fmt.Errorf("%w: assignee does not belong to the creating department", domain.ErrInvalidInput)
		}
	}

	year := time.Now().UTC().Year()
	seq, err := s.seqRepo.Next(ctx, actor.DepartmentID, year)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:                        uuid.New().String(),
		DocumentNumber:            docnum.Format(year, dept.Code, seq),
		Title:                     input.Title,
		Description:               input.Description,
		DocumentType:              input.DocumentType,
		Priority:                  priority,
		Status:                    string(domain.StatusDraft),
		CreatorID:                 actor.UserID,
		CreatorDepartmentID:       actor.DepartmentID,
		CurrentHolderDepartmentID: actor.DepartmentID,
		AssignedToUserID:          input.AssignedToUserID,
		Deadline:                  input.Deadline,
		Tags:                      input.Tags,
		CustomFields:              input.CustomFields,
	}

	entry := s.newEntry(doc.ID, actor, domain.ActionCreated)
	if err := s.store.Create(ctx, doc, entry); err != nil {
		return nil, err
	}

	// Only a creation that names an assignee produces a notification.
	if s.notify != nil && input.AssignedToUserID != nil {
		s.notify.NotifyAssigned(doc, actor, *input.AssignedToUserID)
	}

	log.Printf("✅ Document created: %s by user %d", doc.DocumentNumber, actor.UserID)
	return s.store.GetByID(ctx, doc.ID)
}

// Get returns a document the actor is allowed to see
func (s *DocumentService) Get(ctx context.Context, actor domain.Principal, id string) (*models.Document, error) {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, viewOf(doc)) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// GetByNumber returns a document by its registry number
func (s *DocumentService) GetByNumber(ctx context.Context, actor domain.Principal, documentNumber string) (*models.Document, error) {
	doc, err := s.store.GetByNumber(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, viewOf(doc)) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// List returns documents visible to the actor. Non-admins are scoped to
// documents their own department created or currently holds.
func (s *DocumentService) List(ctx context.Context, actor domain.Principal, filter repositories.DocumentFilter) ([]*models.Document, int64, error) {
	if filter.Status != "" && !domain.ValidStatus(domain.DocumentStatus(filter.Status)) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	if actor.Role != domain.RoleAdmin {
		deptID := actor.DepartmentID
		filter.DepartmentID = &deptID
	}
	return s.store.List(ctx, filter)
}

// Forward routes a document to another department. Forwarding a draft
// implicitly submits it: the status moves to pending.
func (s *DocumentService) Forward(ctx context.Context, actor domain.Principal, id string, input *ForwardDocumentInput) (*models.Document, error) {
	toDept, err := s.deptRepo.GetByID(ctx, input.ToDepartmentID)
	if err != nil {
		return nil, err
	}
	if !toDept.IsActive {
		return nil, fmt.Errorf("%w: department %s is inactive", domain.ErrInvalidInput, toDept.Name)
	}

	if input.AssignedToUserID != nil {
		assignee, err := s.userRepo.GetByID(ctx, *input.AssignedToUserID)
		if err != nil {
			return nil, err
		}
		if !assignee.IsActive {
			return nil, domain.ErrUserInactive
		}
		if assignee.DepartmentID != input.ToDepartmentID {
			return nil, fmt.Errorf("%w: assignee does not belong to the target department", domain.ErrInvalidInput)
		}
	}

	var fromDeptID uint
	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionForward); err != nil {
			return nil, err
		}
		if doc.CurrentHolderDepartmentID == input.ToDepartmentID {
			return nil, domain.ErrNoOpForward
		}

		fromDeptID = doc.CurrentHolderDepartmentID
		entry := s.newEntry(doc.ID, actor, domain.ActionForwarded)
		entry.FromDepartmentID = &fromDeptID
		entry.ToDepartmentID = &input.ToDepartmentID
		entry.Comment = input.Comment

		doc.CurrentHolderDepartmentID = input.ToDepartmentID
		doc.AssignedToUserID = input.AssignedToUserID

		if doc.Status == string(domain.StatusDraft) {
			from, to := string(domain.StatusDraft), string(domain.StatusPending)
			doc.Status = to
			entry.OldStatus = &from
			entry.NewStatus = &to
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyForwarded(doc, actor, input.ToDepartmentID)
	}

	log.Printf("✅ Document %s forwarded: dept %d → dept %d", doc.DocumentNumber, fromDeptID, input.ToDepartmentID)
	return doc, nil
}

// ChangeStatus advances a document one step along the workflow. Every
// transition needs a reason; archiving is irreversible.
func (s *DocumentService) ChangeStatus(ctx context.Context, actor domain.Principal, id string, input *ChangeStatusInput) (*models.Document, error) {
	next := domain.DocumentStatus(input.NewStatus)
	if !domain.ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.NewStatus)
	}
	if input.Reason == nil || *input.Reason == "" {
		return nil, domain.ErrReasonRequired
	}

	var oldStatus string
	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionChangeStatus); err != nil {
			return nil, err
		}

		current := domain.DocumentStatus(doc.Status)
		if !current.CanAdvanceTo(next) {
			return nil, &domain.InvalidTransitionError{From: current, To: next}
		}

		oldStatus = doc.Status
		if next == domain.StatusArchived {
			now := time.Now().UTC()
			doc.ArchivedAt = &now
		}
		doc.Status = string(next)

		entry := s.newEntry(doc.ID, actor, domain.ActionStatusChanged)
		from, to := oldStatus, doc.Status
		entry.OldStatus = &from
		entry.NewStatus = &to
		entry.StatusReason = input.Reason
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyStatusChanged(doc, actor, oldStatus, doc.Status)
	}

	log.Printf("✅ Document %s status: %s → %s", doc.DocumentNumber, oldStatus, doc.Status)
	return doc, nil
}

// Update applies a partial field update. An update that changes nothing
// produces no audit entry and does not bump the document timestamp.
func (s *DocumentService) Update(ctx context.Context, actor domain.Principal, id string, input *UpdateDocumentInput) (*models.Document, error) {
	if input.Priority != nil && !domain.ValidPriority(domain.DocumentPriority(*input.Priority)) {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, *input.Priority)
	}
	if input.Title != nil && *input.Title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}

	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionMutateFields); err != nil {
			return nil, err
		}

		var changes []domain.FieldChange
		record := func(field, oldValue, newValue string) {
			if oldValue != newValue {
				changes = append(changes, domain.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
			}
		}

		if input.Title != nil {
			record("title", doc.Title, *input.Title)
			doc.Title = *input.Title
		}
		if input.Description != nil {
			record("description", doc.Description, *input.Description)
			doc.Description = *input.Description
		}
		if input.Priority != nil {
			record("priority", doc.Priority, *input.Priority)
			doc.Priority = *input.Priority
		}
		if input.Deadline != nil || input.ClearDeadline {
			record("deadline", formatDeadline(doc.Deadline), formatDeadline(input.Deadline))
			doc.Deadline = input.Deadline
		}
		if input.Tags != nil {
			record("tags", fmt.Sprintf("%v", doc.Tags), fmt.Sprintf("%v", *input.Tags))
			doc.Tags = *input.Tags
		}
		if input.CustomFields != nil {
			record("custom_fields", fmt.Sprintf("%v", doc.CustomFields), fmt.Sprintf("%v", *input.CustomFields))
			doc.CustomFields = *input.CustomFields
		}

		if len(changes) == 0 {
			return nil, errNoChanges
		}

		entry := s.newEntry(doc.ID, actor, domain.ActionModified)
		entry.Changes = changes
		return entry, nil
	})
	if errors.Is(err, errNoChanges) {
		return s.store.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Assign hands a document to a specific user inside the holding department
func (s *DocumentService) Assign(ctx context.Context, actor domain.Principal, id string, assigneeID uint) (*models.Document, error) {
	assignee, err := s.userRepo.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if !assignee.IsActive {
		return nil, domain.ErrUserInactive
	}

	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionMutateFields); err != nil {
			return nil, err
		}
		if assignee.DepartmentID != doc.CurrentHolderDepartmentID {
			return nil, fmt.Errorf("%w: assignee does not belong to the holding department", domain.ErrInvalidInput)
		}
		doc.AssignedToUserID = &assigneeID
		entry := s.newEntry(doc.ID, actor, domain.ActionAssigned)
		comment := fmt.Sprintf("assigned to %s", assignee.FullName)
		entry.Comment = &comment
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyAssigned(doc, actor, assigneeID)
	}
	return doc, nil
}

// Respond records a response on the document and tells the creator
func (s *DocumentService) Respond(ctx context.Context, actor domain.Principal, id string, comment string) (*models.Document, error) {
	if comment == "" {
		return nil, fmt.Errorf("%w: response comment is required", domain.ErrInvalidInput)
	}

	doc, err := s.store.Mutate(ctx, id, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionMutateFields); err != nil {
			return nil, err
		}
		entry := s.newEntry(doc.ID, actor, domain.ActionResponded)
		entry.Comment = &comment
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify.NotifyResponded(doc, actor)
	}
	return doc, nil
}

// RecordView appends a viewed entry to the audit trail. Views never touch
// the document row itself.
func (s *DocumentService) RecordView(ctx context.Context, actor domain.Principal, id string) error {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanView(actor, viewOf(doc)) {
		return domain.ErrForbidden
	}
	return s.historyRepo.Append(ctx, s.newEntry(doc.ID, actor, domain.ActionViewed))
}

// Timeline returns a document's audit trail in chronological order
func (s *DocumentService) Timeline(ctx context.Context, actor domain.Principal, id string, filter repositories.TimelineFilter) ([]*models.DocumentHistory, error) {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, viewOf(doc)) {
		return nil, domain.ErrForbidden
	}
	return s.historyRepo.Timeline(ctx, doc.ID, filter)
}

// newEntry builds an audit entry with the actor snapshot filled in
func (s *DocumentService) newEntry(documentID string, actor domain.Principal, action domain.Action) *models.DocumentHistory {
	return &models.DocumentHistory{
		ID:                    uuid.New().String(),
		DocumentID:            documentID,
		Action:                string(action),
		PerformedBy:           actor.UserID,
		PerformedByName:       actor.FullName,
		PerformedByDepartment: actor.DepartmentID,
		Timestamp:             time.Now().UTC(),
	}
}

// viewOf projects the persistence model onto the policy's document snapshot
func viewOf(doc *models.Document) policy.DocumentView {
	return policy.DocumentView{
		CreatorID:           doc.CreatorID,
		CreatorDepartmentID: doc.CreatorDepartmentID,
		HolderDepartmentID:  doc.CurrentHolderDepartmentID,
		AssignedToUserID:    doc.AssignedToUserID,
		Status:              domain.DocumentStatus(doc.Status),
	}
}

func formatDeadline(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
