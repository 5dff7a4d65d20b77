package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docingest/internal/http/middleware"
	"docingest/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Health probes are public; every /documents route requires a bearer token.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, tokens middleware.TokenVerifier) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents", middleware.Auth(tokens))
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/", UploadDocument(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
	docs.Get("/:id/risks", ListRisks(docSvc))
	docs.Post("/:id/shares", CreateShare(docSvc))
	docs.Get("/:id/shares", ListShares(docSvc))
}
