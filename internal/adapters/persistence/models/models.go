package models

import (
	"time"

	"townhall-docflow/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Directory: Departments & Users
// ============================================================

// Department represents departments table
type Department struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Code        string    `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	IsMain      bool      `gorm:"default:false" json:"is_main"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// User represents users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'employee'" json:"role"`
	DepartmentID uint           `gorm:"index;not null" json:"department_id"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Principal converts the stored user into the request principal
func (u *User) Principal() domain.Principal {
	return domain.Principal{
		UserID:       u.ID,
		FullName:     u.FullName,
		Role:         domain.Role(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
	}
}

// UserResponse DTO
type UserResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	DepartmentID   uint      `json:"department_id"`
	DepartmentName string    `json:"department_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
	if u.Department != nil {
		resp.DepartmentName = u.Department.Name
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Document workflow
// ============================================================

// Document represents documents table. Documents are never hard-deleted;
// archiving is the terminal state.
type Document struct {
	ID             string `gorm:"primaryKey;size:36" json:"id"`
	DocumentNumber string `gorm:"uniqueIndex;size:30;not null" json:"document_number"`

	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	DocumentType string `gorm:"size:20;not null" json:"document_type"`
	Priority     string `gorm:"size:10;not null;default:'medium'" json:"priority"`
	Status       string `gorm:"size:20;not null;default:'draft';index" json:"status"`

	CreatorID                 uint  `gorm:"not null;index" json:"creator_id"`
	CreatorDepartmentID       uint  `gorm:"not null;index" json:"creator_department_id"`
	CurrentHolderDepartmentID uint  `gorm:"not null;index" json:"current_holder_department_id"`
	AssignedToUserID          *uint `gorm:"index" json:"assigned_to_user_id"`

	Deadline     *time.Time        `json:"deadline"`
	Tags         []string          `gorm:"serializer:json" json:"tags"`
	CustomFields map[string]string `gorm:"serializer:json" json:"custom_fields"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at"`

	// Relations
	Creator          *User          `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatorDept      *Department    `gorm:"foreignKey:CreatorDepartmentID" json:"creator_department,omitempty"`
	HolderDept       *Department    `gorm:"foreignKey:CurrentHolderDepartmentID" json:"holder_department,omitempty"`
	AssignedUser     *User          `gorm:"foreignKey:AssignedToUserID" json:"assigned_user,omitempty"`
	Files            []DocumentFile `gorm:"foreignKey:DocumentID" json:"files,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentResponse DTO
type DocumentResponse struct {
	ID                        string                  `json:"id"`
	DocumentNumber            string                  `json:"document_number"`
	Title                     string                  `json:"title"`
	Description               string                  `json:"description"`
	DocumentType              string                  `json:"document_type"`
	Priority                  string                  `json:"priority"`
	Status                    string                  `json:"status"`
	CreatorID                 uint                    `json:"creator_id"`
	CreatorName               string                  `json:"creator_name,omitempty"`
	CreatorDepartmentID       uint                    `json:"creator_department_id"`
	CreatorDepartmentName     string                  `json:"creator_department_name,omitempty"`
	CurrentHolderDepartmentID uint                    `json:"current_holder_department_id"`
	HolderDepartmentName      string                  `json:"holder_department_name,omitempty"`
	AssignedToUserID          *uint                   `json:"assigned_to_user_id"`
	AssignedUserName          string                  `json:"assigned_user_name,omitempty"`
	Deadline                  *time.Time              `json:"deadline"`
	Tags                      []string                `json:"tags"`
	CustomFields              map[string]string       `json:"custom_fields"`
	Files                     []*DocumentFileResponse `json:"files"`
	CreatedAt                 time.Time               `json:"created_at"`
	UpdatedAt                 time.Time               `json:"updated_at"`
	ArchivedAt                *time.Time              `json:"archived_at"`
}

func (d *Document) ToResponse() *DocumentResponse {
	resp := &DocumentResponse{
		ID:                        d.ID,
		DocumentNumber:            d.DocumentNumber,
		Title:                     d.Title,
		Description:               d.Description,
		DocumentType:              d.DocumentType,
		Priority:                  d.Priority,
		Status:                    d.Status,
		CreatorID:                 d.CreatorID,
		CreatorDepartmentID:       d.CreatorDepartmentID,
		CurrentHolderDepartmentID: d.CurrentHolderDepartmentID,
		AssignedToUserID:          d.AssignedToUserID,
		Deadline:                  d.Deadline,
		Tags:                      d.Tags,
		CustomFields:              d.CustomFields,
		Files:                     make([]*DocumentFileResponse, 0, len(d.Files)),
		CreatedAt:                 d.CreatedAt,
		UpdatedAt:                 d.UpdatedAt,
		ArchivedAt:                d.ArchivedAt,
	}
	if d.Creator != nil {
		resp.CreatorName = d.Creator.FullName
	}
	if d.CreatorDept != nil {
		resp.CreatorDepartmentName = d.CreatorDept.Name
	}
	if d.HolderDept != nil {
		resp.HolderDepartmentName = d.HolderDept.Name
	}
	if d.AssignedUser != nil {
		resp.AssignedUserName = d.AssignedUser.FullName
	}
	for i := range d.Files {
		resp.Files = append(resp.Files, d.Files[i].ToResponse())
	}
	return resp
}

// DocumentFile represents document_files table: a blob reference attached to
// a document. The list is append/remove only; Position preserves attach order.
type DocumentFile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DocumentID  string    `gorm:"size:36;not null;index" json:"document_id"`
	BlobID      string    `gorm:"size:36;not null;index" json:"blob_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	Position    int       `gorm:"not null" json:"position"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (DocumentFile) TableName() string {
	return "document_files"
}

// DocumentFileResponse DTO
type DocumentFileResponse struct {
	ID          string    `json:"id"`
	BlobID      string    `json:"blob_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  uint      `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (f *DocumentFile) ToResponse() *DocumentFileResponse {
	return &DocumentFileResponse{
		ID:          f.ID,
		BlobID:      f.BlobID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		UploadedBy:  f.UploadedBy,
		UploadedAt:  f.UploadedAt,
	}
}

// ============================================================
// Audit trail
// ============================================================

// DocumentHistory represents document_history table. Entries are append-only:
// the repository exposes no update or delete. PerformedByName is a snapshot
// taken at write time so later user changes never corrupt the record.
type DocumentHistory struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	DocumentID string `gorm:"size:36;not null;index" json:"document_id"`
	Action     string `gorm:"size:20;not null;index" json:"action"`

	PerformedBy           uint   `gorm:"not null;index" json:"performed_by"`
	PerformedByName       string `gorm:"size:100;not null" json:"performed_by_name"`
	PerformedByDepartment uint   `gorm:"not null;index" json:"performed_by_department"`

	FromDepartmentID *uint `json:"from_department_id,omitempty"`
	ToDepartmentID   *uint `json:"to_department_id,omitempty"`

	OldStatus    *string `gorm:"size:20" json:"old_status,omitempty"`
	NewStatus    *string `gorm:"size:20" json:"new_status,omitempty"`
	StatusReason *string `gorm:"size:255" json:"status_reason,omitempty"`

	Changes []domain.FieldChange `gorm:"serializer:json" json:"changes,omitempty"`
	Comment *string              `gorm:"type:text" json:"comment,omitempty"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (DocumentHistory) TableName() string {
	return "document_history"
}

// ============================================================
// Notifications
// ============================================================

// Notification represents notifications table
type Notification struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	DocumentID string     `gorm:"size:36;not null;index" json:"document_id"`
	Type       string     `gorm:"size:30;not null" json:"type"`
	Title      string     `gorm:"size:200;not null" json:"title"`
	Message    string     `gorm:"type:text" json:"message"`
	IsRead     bool       `gorm:"default:false;index" json:"is_read"`
	EmailSent  bool       `gorm:"default:false" json:"email_sent"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ============================================================
// Sequence allocator
// ============================================================

// DocumentSequence represents document_sequences table: one atomic counter
// per (department, year). Values start at 1 and only go up.
type DocumentSequence struct {
	DepartmentID uint  `gorm:"primaryKey;autoIncrement:false" json:"department_id"`
	Year         int   `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Value        int64 `gorm:"not null" json:"value"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// ============================================================
// Blob store
// ============================================================

// FileBlob represents file_blobs table: opaque file bytes keyed by blob ID.
// The workflow core only ever touches the reference metadata.
type FileBlob struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Data        []byte    `gorm:"type:longblob;not null" json:"-"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (FileBlob) TableName() string {
	return "file_blobs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Department{},
		&User{},
		&RefreshToken{},
		&Document{},
		&DocumentFile{},
		&DocumentHistory{},
		&Notification{},
		&DocumentSequence{},
		&FileBlob{},
	)
}
