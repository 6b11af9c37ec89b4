package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kyccase/internal/model"
	"kyccase/internal/service"
)

// UploadDocument handles POST /api/cases/:id/documents
// (multipart/form-data, fields: file, documentType).
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID := c.Params("id")
		if _, err := uuid.Parse(caseID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), service.UploadDocumentInput{
			CaseID:       caseID,
			DocumentType: model.DocumentType(c.FormValue("documentType")),
			FileName:     fh.Filename,
			MimeType:     ct,
			Size:         fh.Size,
			Reader:       f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"document": doc})
	}
}

// ListCaseDocuments handles GET /api/cases/:id/documents.
func ListCaseDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID := c.Params("id")
		if _, err := uuid.Parse(caseID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		docs, err := svc.ListByCase(c.UserContext(), caseID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"documents": docs})
	}
}

// GetDocument handles GET /api/documents/:id and streams the stored bytes
// inline.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return streamDocument(svc, "inline")
}

// DownloadDocument handles GET /api/documents/:id/download and streams the
// stored bytes as an attachment.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return streamDocument(svc, "attachment")
}

func streamDocument(svc service.DocumentService, disposition string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, rc, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, doc.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, doc.FileName))
		return c.SendStream(rc)
	}
}

// DeleteDocument handles DELETE /api/documents/:id.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	}
}
