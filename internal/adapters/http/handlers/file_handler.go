package handlers

import (
	"errors"
	"fmt"
	"io"

	"townhall-docflow/internal/adapters/http/middleware"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/core/services"
	"townhall-docflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FileHandler handles document attachment endpoints
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// UploadFile handles attaching a file to a document
func (h *FileHandler) UploadFile(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}

	input := &services.AttachFileInput{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}

	doc, err := h.fileService.Attach(c.Context(), p, c.Params("id"), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFileTooLarge):
			return response.PayloadTooLarge(c, "File exceeds the size limit")
		case errors.Is(err, domain.ErrUnsupportedFileType):
			return response.UnsupportedMediaType(c, "File type not allowed")
		default:
			return documentError(c, err, "Failed to attach file")
		}
	}

	return response.Created(c, "File attached successfully", doc.ToResponse())
}

// DeleteFile handles detaching a file from a document
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	doc, err := h.fileService.Remove(c.Context(), p, c.Params("id"), c.Params("fileId"))
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return response.NotFound(c, "File not found")
		}
		return documentError(c, err, "Failed to remove file")
	}

	return response.Success(c, "File removed successfully", doc.ToResponse())
}

// DownloadFile handles downloading an attachment
func (h *FileHandler) DownloadFile(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	blob, err := h.fileService.Download(c.Context(), p, c.Params("id"), c.Params("fileId"))
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return response.NotFound(c, "File not found")
		}
		return documentError(c, err, "Failed to download file")
	}

	c.Set("Content-Type", blob.ContentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Filename))
	return c.Send(blob.Data)
}
