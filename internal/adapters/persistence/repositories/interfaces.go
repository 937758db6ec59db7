package repositories

import (
	"context"
	"time"

	"townhall-docflow/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListActiveByDepartment(ctx context.Context, departmentID uint) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// DepartmentRepository defines department repository interface
type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error
	GetByID(ctx context.Context, id uint) (*models.Department, error)
	GetByCode(ctx context.Context, code string) (*models.Department, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Department, error)
	Update(ctx context.Context, dept *models.Department) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// SequenceRepository issues per-(department, year) document sequence numbers.
// Next is linearizable per key: no two callers ever observe the same value.
type SequenceRepository interface {
	Next(ctx context.Context, departmentID uint, year int) (int64, error)
}

// DocumentFilter narrows document list queries
type DocumentFilter struct {
	Status       string
	DepartmentID *uint // matches creator OR current holder department
	CreatorID    *uint
	AssignedTo   *uint
	Search       string
	Offset       int
	Limit        int
}

// DocumentStore owns document persistence. Mutate is the atomic unit the
// workflow core builds on: it loads the document under a row lock, applies fn,
// saves the result and appends the returned audit entry in one transaction.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document, entry *models.DocumentHistory) error
	Mutate(ctx context.Context, id string, fn func(doc *models.Document) (*models.DocumentHistory, error)) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	GetByNumber(ctx context.Context, documentNumber string) (*models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*models.Document, int64, error)
	CountByStatus(ctx context.Context, departmentID *uint) (map[string]int64, error)
	CountByPriority(ctx context.Context, departmentID *uint) (map[string]int64, error)
	CountOverdue(ctx context.Context, departmentID *uint) (int64, error)
	ListDeadlineApproaching(ctx context.Context, before time.Time) ([]*models.Document, error)
}

// TimelineFilter narrows audit trail reads
type TimelineFilter struct {
	Action string
	From   *time.Time
	To     *time.Time
}

// HistoryRepository is the append-only audit trail. There is deliberately no
// update or delete method on this interface.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.DocumentHistory) error
	Timeline(ctx context.Context, documentID string, filter TimelineFilter) ([]*models.DocumentHistory, error)
	RecentActivity(ctx context.Context, departmentID *uint, limit int) ([]*models.DocumentHistory, error)
	CountByUser(ctx context.Context, userID uint, action string) (int64, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByUser(ctx context.Context, userID uint, isRead *bool, offset, limit int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id string, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

// BlobRepository stores opaque file bytes keyed by blob ID
type BlobRepository interface {
	Put(ctx context.Context, blob *models.FileBlob) error
	Get(ctx context.Context, id string) (*models.FileBlob, error)
	Delete(ctx context.Context, id string) error
}
