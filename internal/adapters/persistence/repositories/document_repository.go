package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRepository implements DocumentStore
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentStore {
	return &documentRepository{db: db}
}

// preload returns a query with the standard document relations loaded
func (r *documentRepository) preload(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Creator").
		Preload("CreatorDept").
		Preload("HolderDept").
		Preload("AssignedUser").
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// Create persists a new document together with its `created` audit entry.
// Both rows commit or neither does.
func (r *documentRepository) Create(ctx context.Context, doc *models.Document, entry *models.DocumentHistory) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		entry.DocumentID = doc.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: document number %s", domain.ErrDuplicateResource, doc.DocumentNumber)
		}
		return err
	}
	return nil
}

// Mutate applies fn to the document under a row lock and appends the audit
// entry fn returns, all in one transaction. The SELECT ... FOR UPDATE gives
// per-document mutual exclusion at the store layer: at most one in-flight
// mutation per document identity commits at a time, and a mutation never
// commits without its audit entry.
func (r *documentRepository) Mutate(ctx context.Context, id string, fn func(doc *models.Document) (*models.DocumentHistory, error)) (*models.Document, error) {
	var result *models.Document

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Files", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC")
			}).
			Where("id = ?", id).
			First(&doc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrDocumentNotFound
			}
			return err
		}

		before := make(map[string]bool, len(doc.Files))
		for i := range doc.Files {
			before[doc.Files[i].ID] = true
		}

		entry, err := fn(&doc)
		if err != nil {
			return err
		}

		doc.UpdatedAt = time.Now().UTC()
		if err := tx.Omit("Creator", "CreatorDept", "HolderDept", "AssignedUser", "Files").
			Save(&doc).Error; err != nil {
			return err
		}

		// Attach/remove operations edit doc.Files inside fn; sync the rows
		// by diffing against the snapshot taken before fn ran.
		after := make(map[string]bool, len(doc.Files))
		for i := range doc.Files {
			after[doc.Files[i].ID] = true
			if !before[doc.Files[i].ID] {
				doc.Files[i].DocumentID = doc.ID
				if err := tx.Create(&doc.Files[i]).Error; err != nil {
					return err
				}
			}
		}
		for id := range before {
			if !after[id] {
				if err := tx.Where("id = ?", id).Delete(&models.DocumentFile{}).Error; err != nil {
					return err
				}
			}
		}

		if entry != nil {
			entry.DocumentID = doc.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		result = &doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID gets a document by ID with relations
func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.preload(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetByNumber gets a document by its permanent document number
func (r *documentRepository) GetByNumber(ctx context.Context, documentNumber string) (*models.Document, error) {
	var doc models.Document
	err := r.preload(ctx).Where("document_number = ?", documentNumber).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List lists documents matching the filter with pagination
func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	build := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.DepartmentID != nil {
			q = q.Where("creator_department_id = ? OR current_holder_department_id = ?",
				*filter.DepartmentID, *filter.DepartmentID)
		}
		if filter.CreatorID != nil {
			q = q.Where("creator_id = ?", *filter.CreatorID)
		}
		if filter.AssignedTo != nil {
			q = q.Where("assigned_to_user_id = ?", *filter.AssignedTo)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("title LIKE ? OR description LIKE ? OR document_number LIKE ?", like, like, like)
		}
		return q
	}

	if err := build(r.db.WithContext(ctx).Model(&models.Document{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := build(r.preload(ctx)).
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// CountByStatus groups document counts by status, optionally scoped to a
// department (as creator or holder)
func (r *documentRepository) CountByStatus(ctx context.Context, departmentID *uint) (map[string]int64, error) {
	return r.countBy(ctx, "status", departmentID)
}

// CountByPriority groups document counts by priority
func (r *documentRepository) CountByPriority(ctx context.Context, departmentID *uint) (map[string]int64, error) {
	return r.countBy(ctx, "priority", departmentID)
}

func (r *documentRepository) countBy(ctx context.Context, column string, departmentID *uint) (map[string]int64, error) {
	type row struct {
		Key   string
		Count int64
	}
	var rows []row

	q := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Select(column + " AS `key`, COUNT(*) AS count").
		Group(column)
	if departmentID != nil {
		q = q.Where("creator_department_id = ? OR current_holder_department_id = ?", *departmentID, *departmentID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Key] = r.Count
	}
	return counts, nil
}

// CountOverdue counts open documents whose deadline has already passed
func (r *documentRepository) CountOverdue(ctx context.Context, departmentID *uint) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("deadline IS NOT NULL").
		Where("deadline < ?", time.Now().UTC()).
		Where("status NOT IN ?", []string{string(domain.StatusCompleted), string(domain.StatusArchived)})
	if departmentID != nil {
		q = q.Where("creator_department_id = ? OR current_holder_department_id = ?", *departmentID, *departmentID)
	}
	err := q.Count(&count).Error
	return count, err
}

// ListDeadlineApproaching lists open documents whose deadline falls before
// the given cutoff. Used by the reminder cron sweep.
func (r *documentRepository) ListDeadlineApproaching(ctx context.Context, before time.Time) ([]*models.Document, error) {
	var docs []*models.Document
	err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL").
		Where("deadline <= ?", before).
		Where("status NOT IN ?", []string{string(domain.StatusCompleted), string(domain.StatusArchived)}).
		Find(&docs).Error
	return docs, err
}
