package repositories

import (
	"context"

	"gorm.io/gorm"

	"townhall-docflow/internal/adapters/persistence/models"
)

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *models.DocumentHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Timeline returns a document's audit entries in chronological order.
func (r *historyRepository) Timeline(ctx context.Context, documentID string, filter TimelineFilter) ([]*models.DocumentHistory, error) {
	q := r.db.WithContext(ctx).Where("document_id = ?", documentID)
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		q = q.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("timestamp <= ?", *filter.To)
	}

	var entries []*models.DocumentHistory
	if err := q.Order("timestamp ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) RecentActivity(ctx context.Context, departmentID *uint, limit int) ([]*models.DocumentHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if departmentID != nil {
		q = q.Where("performed_by_department = ?", *departmentID)
	}
	var entries []*models.DocumentHistory
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) CountByUser(ctx context.Context, userID uint, action string) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.DocumentHistory{}).
		Where("performed_by = ?", userID)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
