// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List the caller's documents",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "page size (1-100)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.DocumentListResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Scans, classifies and stores the uploaded file. A detected threat is rejected with 422.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Ingest a document",
                "parameters": [
                    {"type": "file", "description": "document", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "caller sensitivity annotation", "name": "annotation", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Document"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get document metadata",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["documents"],
                "summary": "Delete a document",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "tags": ["documents"],
                "summary": "Download the original bytes",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}/risks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List classifier findings stored for a document",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.DocumentRisk"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}/shares": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["shares"],
                "summary": "List sharing grants of a document",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.DocumentShare"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shares"],
                "summary": "Grant another identity access to a document",
                "parameters": [
                    {"type": "string", "description": "document id", "name": "id", "in": "path", "required": true},
                    {"description": "grantee", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.shareRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.DocumentShare"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "handler.shareRequest": {
            "type": "object",
            "required": ["grantee"],
            "properties": {"grantee": {"type": "string", "maxLength": 255}}
        },
        "model.Document": {
            "type": "object",
            "properties": {
                "classification_status": {"type": "string"},
                "file_size": {"type": "integer"},
                "filename": {"type": "string"},
                "id": {"type": "string"},
                "last_modified_at": {"type": "string"},
                "mime_type": {"type": "string"},
                "risk_score": {"type": "integer"},
                "sensitive_info_annotation": {"type": "string"},
                "status": {"type": "string"},
                "uploaded_at": {"type": "string"}
            }
        },
        "model.DocumentRisk": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "document_id": {"type": "string"},
                "id": {"type": "integer"},
                "risk_key": {"type": "string"},
                "risk_type": {"type": "string"}
            }
        },
        "model.DocumentShare": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "document_id": {"type": "string"},
                "grantee_id": {"type": "string"},
                "id": {"type": "integer"}
            }
        },
        "service.DocumentListResult": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Document"}},
                "total": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document Ingestion API",
	Description:      "Scans, classifies and stores user documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
