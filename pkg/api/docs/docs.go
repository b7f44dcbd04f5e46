// Package docs holds the generated swagger specification.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/earthshout/shout-indexer"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "https://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Check the health status of the API",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "API health status",
                        "schema": {"$ref": "#/definitions/api.HealthResponse"}
                    }
                }
            }
        },
        "/shouts": {
            "get": {
                "description": "Retrieve indexed shouts with optional filtering, pagination and sorting",
                "produces": ["application/json"],
                "tags": ["Shouts"],
                "summary": "List shouts",
                "parameters": [
                    {"type": "number", "description": "Minimum burned amount in whole tokens", "name": "min_amount", "in": "query"},
                    {"type": "string", "description": "Filter by burned token address", "name": "token", "in": "query"},
                    {"enum": ["recent", "amount"], "type": "string", "description": "Sort order: recent or amount", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Maximum number of shouts to return", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Number of shouts to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "List of shouts with pagination info",
                        "schema": {"$ref": "#/definitions/api.ShoutsResponse"}
                    },
                    "400": {
                        "description": "Invalid parameters",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    }
                }
            }
        },
        "/shouts/{id}": {
            "get": {
                "description": "Retrieve a single shout by id. Each request increments the view counter.",
                "produces": ["application/json"],
                "tags": ["Shouts"],
                "summary": "Get a shout",
                "parameters": [
                    {"type": "integer", "description": "Shout id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "The shout",
                        "schema": {"$ref": "#/definitions/store.ShoutEvent"}
                    },
                    "400": {
                        "description": "Invalid id",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    },
                    "404": {
                        "description": "Shout not found",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    }
                }
            }
        },
        "/status": {
            "get": {
                "description": "Report the engine state, checkpoint and event counts",
                "produces": ["application/json"],
                "tags": ["Status"],
                "summary": "Indexer status",
                "responses": {
                    "200": {
                        "description": "Indexer status",
                        "schema": {"$ref": "#/definitions/api.StatusResponse"}
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {"$ref": "#/definitions/api.ErrorResponse"}
                    }
                }
            }
        },
        "/token-prices": {
            "get": {
                "description": "List known token prices used for display purposes",
                "produces": ["application/json"],
                "tags": ["Prices"],
                "summary": "Token prices",
                "responses": {
                    "200": {
                        "description": "Token prices",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/api.TokenPrice"}}
                    }
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "api.PaginationResult": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "api.ShoutsResponse": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/api.PaginationResult"},
                "shouts": {"type": "array", "items": {"$ref": "#/definitions/store.ShoutEvent"}}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "chain_id": {"type": "integer"},
                "events_by_kind": {"type": "object", "additionalProperties": {"type": "integer"}},
                "has_checkpoint": {"type": "boolean"},
                "last_indexed_block": {"type": "integer"},
                "last_update_unix": {"type": "integer"},
                "state": {"type": "string"},
                "total_events": {"type": "integer"}
            }
        },
        "api.TokenPrice": {
            "type": "object",
            "properties": {
                "price_usd": {"type": "number"},
                "symbol": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "store.ShoutEvent": {
            "type": "object",
            "properties": {
                "amount_burned": {"type": "string"},
                "block_number": {"type": "integer"},
                "boost_for_sequence_id": {"type": "integer"},
                "content": {"type": "string"},
                "gift_amount": {"type": "string"},
                "id": {"type": "integer"},
                "kind": {"type": "string"},
                "recipient_address": {"type": "string"},
                "sender_address": {"type": "string"},
                "sequence_id": {"type": "integer"},
                "timestamp": {"type": "integer"},
                "token_address": {"type": "string"},
                "transaction_hash": {"type": "string"},
                "verified": {"type": "boolean"},
                "views": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Shout Indexer API",
	Description:      "REST API for querying burn-to-broadcast events indexed from the Void contract",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
