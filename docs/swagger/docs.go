// Package swagger holds the OpenAPI document served under /swagger.
// It follows the swag annotations on the card and integrity handlers and
// is kept in step with them by hand; swag init regenerates it.
package swagger

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
        "/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "List Cards",
                "parameters": [
                    {"type": "boolean", "description": "Hide drafts", "name": "published", "in": "query"},
                    {"type": "integer", "description": "Maximum number of cards", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Cards", "schema": {"type": "array", "items": {"$ref": "#/definitions/card.CardView"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "description": "Create a local draft card stamped with the configured author.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Create Card",
                "parameters": [
                    {"description": "Initial attributes", "name": "card", "in": "body", "required": true, "schema": {"$ref": "#/definitions/card.NewCard"}}
                ],
                "responses": {
                    "201": {"description": "Created card", "schema": {"$ref": "#/definitions/card.CardView"}},
                    "422": {"description": "Invalid input", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Get Card",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Card", "schema": {"$ref": "#/definitions/card.CardView"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "patch": {
                "description": "Change title, timing or location locally. The card is marked dirty until the next push.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Edit Card",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true},
                    {"description": "Changes", "name": "edit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/card.Edit"}}
                ],
                "responses": {
                    "200": {"description": "Card", "schema": {"$ref": "#/definitions/card.CardView"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Invalid input", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}/collaborative": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Set Collaborative",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true},
                    {"description": "Toggle", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/card.CollaborativeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Card", "schema": {"$ref": "#/definitions/card.CardView"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}/share": {
            "get": {
                "description": "Resolve the card web_url against the remote base url.",
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Share Card",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Share link", "schema": {"$ref": "#/definitions/card.ShareLink"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Card not pulled yet", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}/pull": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Pull Card",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Cycle result", "schema": {"$ref": "#/definitions/reconcile.Result"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Photo list could not be applied", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Remote unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}/push": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Push Card",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Cycle result", "schema": {"$ref": "#/definitions/reconcile.Result"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Remote unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cards/{uuid}/photos/{key}/content": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["media"],
                "summary": "Get Photo Content",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true},
                    {"type": "string", "description": "Photo key (URL escaped)", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Content", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "consumes": ["application/octet-stream"],
                "tags": ["media"],
                "summary": "Store Photo Content",
                "parameters": [
                    {"type": "string", "description": "Card UUID", "name": "uuid", "in": "path", "required": true},
                    {"type": "string", "description": "Photo key (URL escaped)", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Stored"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity": {
            "get": {
                "description": "Performs the storage, schema and media checks.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/storage": {
            "get": {
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Storage",
                "parameters": [
                    {"type": "boolean", "description": "Create the bucket when missing", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Storage Report", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/schema": {
            "get": {
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Schema",
                "responses": {
                    "200": {"description": "Schema Report", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/media": {
            "get": {
                "description": "Compares stored photo content with the photos of every card.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Media",
                "parameters": [
                    {"type": "boolean", "description": "Remove orphaned objects", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Media Report", "schema": {"$ref": "#/definitions/checks.MediaReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "card.CardView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "uuid": {"type": "string"},
                "title": {"type": "string"},
                "display_title": {"type": "string"},
                "timing": {"type": "integer"},
                "anim_render": {"type": "string"},
                "video_render": {"type": "string"},
                "video_type": {"type": "string"},
                "cover_photo": {"type": "string"},
                "thumbnail": {"type": "string"},
                "media_url": {"type": "string"},
                "web_url": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "privacy": {"type": "string"},
                "collaborative": {"type": "boolean"},
                "author_name": {"type": "string"},
                "author_uri": {"type": "string"},
                "draft": {"type": "boolean"},
                "dirty": {"type": "boolean"},
                "created_at": {"type": "string"},
                "photos": {"type": "array", "items": {"$ref": "#/definitions/models.CardMedia"}}
            }
        },
        "models.CardMedia": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "key": {"type": "string"},
                "uri": {"type": "string"},
                "media_url": {"type": "string"},
                "mime_type": {"type": "string"},
                "position": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "card.NewCard": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "timing": {"type": "integer"},
                "location": {"$ref": "#/definitions/reconcile.GeoPoint"}
            }
        },
        "card.Edit": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "timing": {"type": "integer"},
                "location": {"$ref": "#/definitions/reconcile.GeoPoint"},
                "clear_location": {"type": "boolean"}
            }
        },
        "card.CollaborativeRequest": {
            "type": "object",
            "properties": {
                "collaborative": {"type": "boolean"}
            }
        },
        "card.ShareLink": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "checks.MediaReport": {
            "type": "object",
            "properties": {
                "photos": {"type": "integer"},
                "stored": {"type": "integer"},
                "missing": {"type": "array", "items": {"type": "string"}},
                "orphans": {"type": "array", "items": {"type": "string"}}
            }
        },
        "reconcile.GeoPoint": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "reconcile.Conflict": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "remote_key": {"type": "string"},
                "local": {},
                "remote": {},
                "kept": {"type": "boolean"}
            }
        },
        "reconcile.ChildSummary": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "inserted": {"type": "integer"},
                "updated": {"type": "integer"},
                "deleted": {"type": "integer"},
                "reordered": {"type": "integer"}
            }
        },
        "reconcile.Result": {
            "type": "object",
            "properties": {
                "uuid": {"type": "string"},
                "direction": {"type": "string"},
                "applied": {"type": "array", "items": {"type": "string"}},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Conflict"}},
                "children": {"$ref": "#/definitions/reconcile.ChildSummary"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Postcard Sync API",
	Description:      "API for creating postcards locally and reconciling them with the remote service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
