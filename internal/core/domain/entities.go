package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDepartmentHead Role = "department_head"
	RoleEmployee       Role = "employee"
)

// ValidRole checks if a role value is recognized
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleDepartmentHead, RoleEmployee:
		return true
	}
	return false
}

// Principal is the authenticated caller on a request.
// Role and department are read-only inputs; they never change mid-operation.
type Principal struct {
	UserID       uint
	FullName     string
	Role         Role
	DepartmentID uint
	IsActive     bool
}

// DocumentStatus represents the document workflow state
type DocumentStatus string

const (
	StatusDraft      DocumentStatus = "draft"
	StatusPending    DocumentStatus = "pending"
	StatusInProgress DocumentStatus = "in_progress"
	StatusCompleted  DocumentStatus = "completed"
	StatusArchived   DocumentStatus = "archived"
)

// statusOrder defines the single forward timeline of the workflow.
var statusOrder = map[DocumentStatus]int{
	StatusDraft:      0,
	StatusPending:    1,
	StatusInProgress: 2,
	StatusCompleted:  3,
	StatusArchived:   4,
}

// ValidStatus checks if a status value is recognized
func ValidStatus(s DocumentStatus) bool {
	_, ok := statusOrder[s]
	return ok
}

// CanAdvanceTo reports whether s -> next is a legal transition.
// Only the immediate next step is allowed; skips and reversals are rejected
// so the audit trail stays readable as one forward timeline.
func (s DocumentStatus) CanAdvanceTo(next DocumentStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// IsTerminal reports whether the status has no outgoing transitions
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusArchived
}

// DocumentPriority represents document priority
type DocumentPriority string

const (
	PriorityLow    DocumentPriority = "low"
	PriorityMedium DocumentPriority = "medium"
	PriorityHigh   DocumentPriority = "high"
	PriorityUrgent DocumentPriority = "urgent"
)

// ValidPriority checks if a priority value is recognized
func ValidPriority(p DocumentPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DocumentType represents the kind of routed document
type DocumentType string

const (
	TypeRequest      DocumentType = "request"
	TypeResponse     DocumentType = "response"
	TypeMemo         DocumentType = "memo"
	TypeReport       DocumentType = "report"
	TypeNotification DocumentType = "notification"
	TypeOther        DocumentType = "other"
)

// ValidDocumentType checks if a document type value is recognized
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case TypeRequest, TypeResponse, TypeMemo, TypeReport, TypeNotification, TypeOther:
		return true
	}
	return false
}

// Action represents an audit trail action
type Action string

const (
	ActionCreated       Action = "created"
	ActionForwarded     Action = "forwarded"
	ActionViewed        Action = "viewed"
	ActionResponded     Action = "responded"
	ActionStatusChanged Action = "status_changed"
	ActionModified      Action = "modified"
	ActionFileAdded     Action = "file_added"
	ActionFileRemoved   Action = "file_removed"
	ActionAssigned      Action = "assigned"
)

// NotificationType represents notification categories
type NotificationType string

const (
	NotifDocumentReceived    NotificationType = "document_received"
	NotifDocumentForwarded   NotificationType = "document_forwarded"
	NotifResponseReceived    NotificationType = "response_received"
	NotifStatusChanged       NotificationType = "status_changed"
	NotifDeadlineApproaching NotificationType = "deadline_approaching"
)

// FieldChange records one field-level old/new pair for a modified entry
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// NotificationIntent is a fire-and-forget request to notify a user.
// The dispatcher owns delivery; its failures never reach the caller.
type NotificationIntent struct {
	UserID     uint
	DocumentID string
	Type       NotificationType
	Title      string
	Message    string
}
