package handler

import (
	"mime"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docingest/internal/http/middleware"
	"docingest/internal/service"
	"docingest/internal/upload"
)

var validate = validator.New()

type listQuery struct {
	Limit  int `query:"limit" validate:"gte=1,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// ListDocuments godoc
// @Summary List the caller's documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := listQuery{Limit: 10}
		if err := c.QueryParser(&q); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid limit or offset")
		}
		if err := validate.Struct(q); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid limit or offset")
		}

		res, err := svc.List(c.UserContext(), middleware.Owner(c), q.Limit, q.Offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument godoc
// @Summary Ingest a document
// @Description Scans, classifies and stores the uploaded file. A detected threat is rejected with 422.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "document"
// @Param annotation formData string false "caller sensitivity annotation"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		doc, err := svc.Ingest(c.UserContext(), upload.FromFileHeader(fh), middleware.Owner(c), c.FormValue("annotation"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary Get document metadata
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id, middleware.Owner(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument godoc
// @Summary Download the original bytes
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id, middleware.Owner(c))
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentDisposition, contentDisposition(doc.Filename))
		c.Set(fiber.HeaderContentType, doc.MimeType)
		return c.Send(svc.ReadContent(doc))
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id, middleware.Owner(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListRisks godoc
// @Summary List classifier findings stored for a document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {array} model.DocumentRisk
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/risks [get]
func ListRisks(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		risks, err := svc.ListRisks(c.UserContext(), id, middleware.Owner(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(risks)
	}
}

func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// contentDisposition keeps the stored filename verbatim, quoting or RFC 2231 encoding it as needed.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
