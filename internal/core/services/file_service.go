package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/core/policy"
)

// allowedContentTypes is the upload allow-list. Anything else is rejected
// before the blob is written.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"text/plain":      true,
	"application/zip": true,
}

// FileService handles document attachments
type FileService struct {
	store       repositories.DocumentStore
	blobRepo    repositories.BlobRepository
	maxFileSize int64
}

// NewFileService creates a new file service
func NewFileService(store repositories.DocumentStore, blobRepo repositories.BlobRepository, maxFileSize int64) *FileService {
	return &FileService{
		store:       store,
		blobRepo:    blobRepo,
		maxFileSize: maxFileSize,
	}
}

// AttachFileInput represents an upload
type AttachFileInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Attach validates the upload, stores the blob, then appends the file
// reference and the audit entry in one document transaction. An orphaned
// blob from a failed second step is harmless; the reference is what counts.
func (s *FileService) Attach(ctx context.Context, actor domain.Principal, documentID string, input *AttachFileInput) (*models.Document, error) {
	if input.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if int64(len(input.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", domain.ErrFileTooLarge, len(input.Data), s.maxFileSize)
	}
	if !allowedContentTypes[input.ContentType] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, input.ContentType)
	}

	blob := &models.FileBlob{
		ID:          uuid.New().String(),
		Data:        input.Data,
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Size:        int64(len(input.Data)),
		UploadedBy:  actor.UserID,
	}
	if err := s.blobRepo.Put(ctx, blob); err != nil {
		return nil, err
	}

	doc, err := s.store.Mutate(ctx, documentID, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionAttachFile); err != nil {
			return nil, err
		}

		position := 0
		for i := range doc.Files {
			if doc.Files[i].Position >= position {
				position = doc.Files[i].Position + 1
			}
		}
		doc.Files = append(doc.Files, models.DocumentFile{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			BlobID:      blob.ID,
			Filename:    blob.Filename,
			ContentType: blob.ContentType,
			Size:        blob.Size,
			Position:    position,
			UploadedBy:  actor.UserID,
			UploadedAt:  time.Now().UTC(),
		})

		entry := &models.DocumentHistory{
			ID:                    uuid.New().String(),
			DocumentID:            doc.ID,
			Action:                string(domain.ActionFileAdded),
			PerformedBy:           actor.UserID,
			PerformedByName:       actor.FullName,
			PerformedByDepartment: actor.DepartmentID,
			Timestamp:             time.Now().UTC(),
		}
		comment := fmt.Sprintf("attached %s (%d bytes)", blob.Filename, blob.Size)
		entry.Comment = &comment
		return entry, nil
	})
	if err != nil {
		// Best effort cleanup; the blob is unreferenced either way.
		if delErr := s.blobRepo.Delete(ctx, blob.ID); delErr != nil {
			log.Printf("⚠️ Failed to clean up blob %s: %v", blob.ID, delErr)
		}
		return nil, err
	}

	return doc, nil
}

// Remove detaches a file from a document
func (s *FileService) Remove(ctx context.Context, actor domain.Principal, documentID, fileID string) (*models.Document, error) {
	var blobID string
	doc, err := s.store.Mutate(ctx, documentID, func(doc *models.Document) (*models.DocumentHistory, error) {
		if err := policy.Authorize(actor, viewOf(doc), policy.ActionRemoveFile); err != nil {
			return nil, err
		}

		index := -1
		for i := range doc.Files {
			if doc.Files[i].ID == fileID {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, domain.ErrFileNotFound
		}

		removed := doc.Files[index]
		blobID = removed.BlobID
		doc.Files = append(doc.Files[:index], doc.Files[index+1:]...)

		entry := &models.DocumentHistory{
			ID:                    uuid.New().String(),
			DocumentID:            doc.ID,
			Action:                string(domain.ActionFileRemoved),
			PerformedBy:           actor.UserID,
			PerformedByName:       actor.FullName,
			PerformedByDepartment: actor.DepartmentID,
			Timestamp:             time.Now().UTC(),
		}
		comment := fmt.Sprintf("removed %s", removed.Filename)
		entry.Comment = &comment
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.blobRepo.Delete(ctx, blobID); err != nil {
		log.Printf("⚠️ Failed to delete blob %s: %v", blobID, err)
	}
	return doc, nil
}

// Download returns a file's bytes after a visibility check
func (s *FileService) Download(ctx context.Context, actor domain.Principal, documentID, fileID string) (*models.FileBlob, error) {
	doc, err := s.store.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, viewOf(doc)) {
		return nil, domain.ErrForbidden
	}

	for i := range doc.Files {
		if doc.Files[i].ID == fileID {
			return s.blobRepo.Get(ctx, doc.Files[i].BlobID)
		}
	}
	return nil, domain.ErrFileNotFound
}
