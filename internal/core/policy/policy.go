package policy

import (
	"townhall-docflow/internal/core/domain"
)

// Action is a document operation subject to access control
type Action string

const (
	ActionView         Action = "view"
	ActionMutateFields Action = "mutate_fields"
	ActionForward      Action = "forward"
	ActionChangeStatus Action = "change_status"
	ActionAttachFile   Action = "attach_file"
	ActionRemoveFile   Action = "remove_file"
)

// DocumentView is the document snapshot the policy decides over.
// It is deliberately minimal so the engine stays a pure function.
type DocumentView struct {
	CreatorID           uint
	CreatorDepartmentID uint
	HolderDepartmentID  uint
	AssignedToUserID    *uint
	Status              domain.DocumentStatus
}

// Authorize decides whether the principal may perform action on the document.
// Returns nil when allowed, domain.ErrDocumentArchived for mutations on an
// archived document, domain.ErrForbidden otherwise.
//
// Decision table:
//
//	admin            – everything
//	department_head  – all actions when own department is creator or holder
//	employee         – view like a department head; mutations only when
//	                   additionally creator or assignee
//	any role         – creator can always view own documents
func Authorize(p domain.Principal, doc DocumentView, action Action) error {
	if !p.IsActive {
		return domain.ErrForbidden
	}

	// Archived documents are read-only for everyone, admin included.
	if action != ActionView && doc.Status.IsTerminal() {
		return domain.ErrDocumentArchived
	}

	if p.Role == domain.RoleAdmin {
		return nil
	}

	isCreator := doc.CreatorID == p.UserID
	isAssignee := doc.AssignedToUserID != nil && *doc.AssignedToUserID == p.UserID
	deptInvolved := p.DepartmentID == doc.CreatorDepartmentID || p.DepartmentID == doc.HolderDepartmentID

	if action == ActionView {
		if isCreator || deptInvolved {
			return nil
		}
		return domain.ErrForbidden
	}

	switch p.Role {
	case domain.RoleDepartmentHead:
		if deptInvolved {
			return nil
		}
	case domain.RoleEmployee:
		if deptInvolved && (isCreator || isAssignee) {
			return nil
		}
	}
	return domain.ErrForbidden
}

// CanView is a convenience wrapper used by read paths
func CanView(p domain.Principal, doc DocumentView) bool {
	return Authorize(p, doc, ActionView) == nil
}
