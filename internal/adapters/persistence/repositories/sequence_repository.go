package repositories

import (
	"context"
	"fmt"

	"townhall-docflow/internal/core/domain"

	"gorm.io/gorm"
)

// sequenceRepository implements SequenceRepository on top of the
// document_sequences table.
type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next atomically increments and returns the counter for (department, year).
// The INSERT ... ON DUPLICATE KEY UPDATE with LAST_INSERT_ID is the standard
// MySQL idiom for a linearizable per-row counter: concurrent callers are
// serialized on the row, each connection reads back its own value, and the
// counter survives restarts because it lives in the table itself.
func (r *sequenceRepository) Next(ctx context.Context, departmentID uint, year int) (int64, error) {
	var value int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO document_sequences (department_id, year, value) VALUES (?, ?, LAST_INSERT_ID(1)) "+
				"ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)",
			departmentID, year,
		).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT LAST_INSERT_ID()").Scan(&value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: sequence allocation failed: %v", domain.ErrStorageUnavailable, err)
	}
	return value, nil
}
