package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/core/domain"
)

type blobRepository struct {
	db *gorm.DB
}

func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepository{db: db}
}

func (r *blobRepository) Put(ctx context.Context, blob *models.FileBlob) error {
	return r.db.WithContext(ctx).Create(blob).Error
}

func (r *blobRepository) Get(ctx context.Context, id string) (*models.FileBlob, error) {
	var blob models.FileBlob
	if err := r.db.WithContext(ctx).First(&blob, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return &blob, nil
}

func (r *blobRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FileBlob{}).Error
}
