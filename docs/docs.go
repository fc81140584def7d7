// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue an admin token",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.TokenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/filters": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["filters"],
                "summary": "List filters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.FilterListResponse"}}}
            }
        },
        "/filters/write": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["filters"],
                "summary": "Write filters",
                "responses": {"204": {"description": "No Content"}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/filters/filterban": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["filters"],
                "summary": "Toggle address filtering",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.FilterBanRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/filters/ip": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["filters"],
                "summary": "Add an address filter",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.AddIPRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/filters/ip/{pattern}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["filters"],
                "summary": "Remove an address filter",
                "parameters": [{"type": "string", "in": "path", "name": "pattern", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/bans": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["identities"],
                "summary": "Ban a player",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.BanRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/bans/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["identities"],
                "summary": "Remove bans",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"type": "number", "in": "query", "name": "threshold"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RemovedResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/mutes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["identities"],
                "summary": "Mute a player",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.MuteRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/mutes/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["identities"],
                "summary": "Remove mutes",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}, {"type": "number", "in": "query", "name": "threshold"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.RemovedResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}}
            }
        },
        "/console": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Run an admin command",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.ConsoleRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ConsoleResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ConsoleResponse"}}}
            }
        },
        "/admission/address": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admission"],
                "summary": "Check an address",
                "parameters": [{"type": "string", "in": "query", "name": "addr", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.AddressCheckResponse"}}}
            }
        },
        "/admission/identity/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admission"],
                "summary": "Check a player identity",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"type": "boolean", "in": "query", "name": "ban"},
                    {"type": "boolean", "in": "query", "name": "mute"},
                    {"type": "boolean", "in": "query", "name": "shadow"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.IdentityCheckResponse"}}}
            }
        },
        "/ws": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["filters"],
                "summary": "Stream filter changes",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "applied": {"type": "boolean"}}},
        "api.TokenRequest": {"type": "object", "required": ["password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "api.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}, "expires_at": {"type": "string"}}},
        "api.EntryResponse": {"type": "object", "properties": {
            "slot": {"type": "integer"}, "kind": {"type": "string"}, "pattern": {"type": "string"}, "id": {"type": "string"},
            "mute": {"type": "boolean"}, "shadow_mute": {"type": "boolean"}, "remaining_minutes": {"type": "number"}}},
        "api.FilterListResponse": {"type": "object", "properties": {
            "filterban": {"type": "boolean"}, "capacity": {"type": "integer"},
            "entries": {"type": "array", "items": {"$ref": "#/definitions/api.EntryResponse"}}}},
        "api.AddIPRequest": {"type": "object", "required": ["pattern"], "properties": {"pattern": {"type": "string"}, "minutes": {"type": "number"}}},
        "api.BanRequest": {"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}, "minutes": {"type": "number"}}},
        "api.MuteRequest": {"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}, "shadow": {"type": "boolean"}, "minutes": {"type": "number"}}},
        "api.FilterBanRequest": {"type": "object", "required": ["enabled"], "properties": {"enabled": {"type": "boolean"}}},
        "api.RemovedResponse": {"type": "object", "properties": {"removed": {"type": "integer"}}},
        "api.ConsoleRequest": {"type": "object", "required": ["command"], "properties": {"command": {"type": "string"}}},
        "api.ConsoleResponse": {"type": "object", "properties": {"output": {"type": "array", "items": {"type": "string"}}}},
        "api.AddressCheckResponse": {"type": "object", "properties": {"address": {"type": "string"}, "banned": {"type": "boolean"}}},
        "api.IdentityCheckResponse": {"type": "object", "properties": {"id": {"type": "string"}, "filtered": {"type": "boolean"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Game Filter API",
	Description:      "Ban, mute and address filter administration for a game server",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
