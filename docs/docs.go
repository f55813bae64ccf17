// Package docs registers the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/v1/sessions": {
            "post": {
                "description": "Starts a dashboard session, attached to the configured default database when there is one.",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Create session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.SessionInfo"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get session",
                "parameters": [{"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SessionInfo"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "delete": {
                "tags": ["sessions"],
                "summary": "Delete session",
                "parameters": [{"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/dataset": {
            "post": {
                "description": "Attaches a SQLite file (.db, .sqlite, .sqlite3) to the session. The file must hold the Beacon and BeaconEvent tables.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Upload database",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "SQLite database", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.DatasetInfo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "error, element", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/beacons": {
            "get": {
                "description": "The returned order is the one used by the \"range\" selection operation.",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "List beacons",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Case-insensitive search on id or description", "name": "q", "in": "query"},
                    {"enum": ["description", "id"], "type": "string", "description": "Sort order", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, beacons", "schema": {"type": "object"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/selection": {
            "post": {
                "description": "all/clear/first/quality/temperature_range replace the selection; pattern/range add to it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Change selection",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"description": "Selection operation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SessionInfo"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/analyze": {
            "post": {
                "description": "Filters the selected beacons' readings to the window and returns charts, summary, preview and schematic.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"description": "Window and display options", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/charts/{beacon}": {
            "get": {
                "description": "Time-series chart of one beacon of the latest analysis, as SVG or as JSON series.",
                "produces": ["image/svg+xml", "application/json"],
                "tags": ["analysis"],
                "summary": "Beacon chart",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Beacon id", "name": "beacon", "in": "path", "required": true},
                    {"enum": ["svg", "json"], "type": "string", "description": "Output format", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/api/v1/sessions/{id}/schematic": {
            "get": {
                "description": "Grid of beacons coloured by how far their maximum temperature is from the target.",
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Temperature schematic",
                "parameters": [
                    {"type": "string", "description": "Session id", "name": "id", "in": "path", "required": true},
                    {"type": "number", "description": "Target temperature, °C", "name": "target", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "element": {"type": "string"},
                "field": {"type": "string"},
                "row": {"type": "integer"},
                "beacon_id": {"type": "string"}
            }
        },
        "handlers.SelectionRequest": {
            "type": "object",
            "required": ["op"],
            "properties": {
                "op": {"type": "string", "example": "first"},
                "n": {"type": "integer", "example": 3},
                "text": {"type": "string", "example": "kiln"},
                "lo": {"type": "number", "example": 50},
                "hi": {"type": "number", "example": 150},
                "from": {"type": "string", "example": "3"},
                "to": {"type": "string", "example": "7"}
            }
        },
        "handlers.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "example": "2024-03-01"},
                "to": {"type": "string", "example": "2024-03-02"},
                "resample": {"type": "string", "example": "5m"},
                "target_temp_c": {"type": "number", "example": 115}
            }
        },
        "service.DatasetInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "beacons": {"type": "integer"},
                "records": {"type": "integer"},
                "days": {"type": "integer"},
                "span": {"$ref": "#/definitions/models.Window"}
            }
        },
        "service.SessionInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "created_at": {"type": "string"},
                "dataset": {"$ref": "#/definitions/service.DatasetInfo"},
                "selected": {"type": "array", "items": {"type": "string"}},
                "window": {"$ref": "#/definitions/models.Window"}
            }
        },
        "models.Window": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Beacon Analyzer API",
	Description:      "Explore beacon temperature and RSSI readings from uploaded SQLite databases.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
