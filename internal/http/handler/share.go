package handler

import (
	"github.com/gofiber/fiber/v2"

	"docingest/internal/http/middleware"
	"docingest/internal/service"
)

type shareRequest struct {
	Grantee string `json:"grantee" validate:"required,max=255"`
}

// CreateShare godoc
// @Summary Grant another identity access to a document
// @Tags shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Param body body shareRequest true "grantee"
// @Success 201 {object} model.DocumentShare
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/shares [post]
func CreateShare(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "grantee is required")
		}

		share, err := svc.Share(c.UserContext(), id, middleware.Owner(c), req.Grantee)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(share)
	}
}

// ListShares godoc
// @Summary List sharing grants of a document
// @Tags shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {array} model.DocumentShare
// @Failure 404 {object} errorPayload
// @Router /documents/{id}/shares [get]
func ListShares(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		shares, err := svc.ListShares(c.UserContext(), id, middleware.Owner(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(shares)
	}
}
