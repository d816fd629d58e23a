// Package docs registers the OpenAPI description served under /swagger.
// Rebuild it with: swag init -g cmd/bookkeeper/main.go
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
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Liveness probe",
                "tags": [
                    "health"
                ],
                "produces": [
                    "application/json"
                ]
            }
        },
        "/health/ready": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Service Unavailable"
                    }
                },
                "summary": "Readiness probe",
                "tags": [
                    "health"
                ],
                "produces": [
                    "application/json"
                ]
            }
        },
        "/v1/admin/access/grant-all": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Grant every non-admin user access for N days",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Days of access",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/v1/admin/access/revoke-all": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Revoke access of every non-admin user",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/admin/users": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                },
                "summary": "List every known user",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/admin/users/{id}/access": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Grant a user access for N days from now",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "User id",
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Days of access",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            },
            "delete": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                },
                "summary": "Revoke a user's access",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "User id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/admin/users/{id}/admin": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Promote a user to admin",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "User id",
                        "type": "integer"
                    }
                ]
            },
            "delete": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Demote an admin; the bootstrap admin cannot be demoted",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "User id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/analytics/break-even": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                },
                "summary": "Units needed to cover fixed costs",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "fixed_costs",
                        "in": "query",
                        "required": true,
                        "description": "Total fixed costs",
                        "type": "number"
                    },
                    {
                        "name": "profit_per_unit",
                        "in": "query",
                        "required": true,
                        "description": "Profit per unit sold",
                        "type": "number"
                    }
                ]
            }
        },
        "/v1/debts/{id}": {
            "patch": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Change one field of a debt",
                "tags": [
                    "debts"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Debt id",
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "type, person_name, amount, description or is_repaid",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            },
            "delete": {
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                },
                "summary": "Delete a debt",
                "tags": [
                    "debts"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Debt id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/debts/{id}/repay": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                },
                "summary": "Mark a debt as repaid",
                "tags": [
                    "debts"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Debt id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/me": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "The calling user and whether their access is active",
                "tags": [
                    "access"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/quick-expense-categories": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "List the preset quick expense categories",
                "tags": [
                    "transactions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/sessions": {
            "post": {
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Open a new session",
                "tags": [
                    "sessions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Session settings",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            },
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "List the caller's sessions, newest first",
                "tags": [
                    "sessions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/v1/sessions/{id}": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                },
                "summary": "Get a session with its totals",
                "tags": [
                    "sessions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            },
            "patch": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Rename a session or change its budget",
                "tags": [
                    "sessions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Fields to change",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/daily": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Per-day totals for the last N days, oldest first",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "days",
                        "in": "query",
                        "required": false,
                        "description": "Days to include (1-90, default 7)",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/expenses": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Expenses by category, largest first",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/forecast": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Revenue and profit forecast",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "days",
                        "in": "query",
                        "required": false,
                        "description": "Horizon in days (1-365, default 30)",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/profitability": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Per-sale profitability",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/roi": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Return on investment and advertising spend",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/summary": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                },
                "summary": "Full analytics summary of a session",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/analytics/velocity": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Sales velocity",
                "tags": [
                    "analytics"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/close": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                },
                "summary": "Close a session; closed sessions accept no new records",
                "tags": [
                    "sessions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/debts": {
            "post": {
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Record a debt",
                "tags": [
                    "debts"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first result for a repeated key",
                        "type": "string"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Debt",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            },
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "List a session's debts, newest first",
                "tags": [
                    "debts"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "type",
                        "in": "query",
                        "required": false,
                        "description": "owed_to_me or i_owe",
                        "type": "string"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "description": "Matches person name or description",
                        "type": "string"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Maximum number of results",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/expenses": {
            "post": {
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Record an expense",
                "tags": [
                    "transactions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first result for a repeated key",
                        "type": "string"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Expense",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/v1/sessions/{id}/export/{kind}": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "CSV export of sales, expenses or debts",
                "tags": [
                    "reports"
                ],
                "produces": [
                    "text/csv"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "kind",
                        "in": "path",
                        "required": true,
                        "description": "sales, expenses or debts",
                        "type": "string"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/quick-expenses": {
            "post": {
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Record an expense under a quick category",
                "tags": [
                    "transactions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first result for a repeated key",
                        "type": "string"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Category and amount",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/v1/sessions/{id}/report": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "summary": "Plain-text analytics report",
                "tags": [
                    "reports"
                ],
                "produces": [
                    "text/plain"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/reset": {
            "post": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                },
                "summary": "Delete every transaction and debt of an active session",
                "tags": [
                    "sessions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/sessions/{id}/sales": {
            "post": {
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Record a sale",
                "tags": [
                    "transactions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first result for a repeated key",
                        "type": "string"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "Sale",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/v1/sessions/{id}/transactions": {
            "get": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "List a session's transactions, newest first",
                "tags": [
                    "transactions"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Session id",
                        "type": "integer"
                    },
                    {
                        "name": "type",
                        "in": "query",
                        "required": false,
                        "description": "sale or expense",
                        "type": "string"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "description": "Case-insensitive description filter",
                        "type": "string"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Maximum number of results",
                        "type": "integer"
                    }
                ]
            }
        },
        "/v1/transactions/{id}": {
            "patch": {
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "422": {
                        "description": "Unprocessable Entity"
                    }
                },
                "summary": "Change one field of a transaction",
                "tags": [
                    "transactions"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Transaction id",
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "description": "amount, expense_amount or description",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            },
            "delete": {
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                },
                "summary": "Delete a transaction",
                "tags": [
                    "transactions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Transaction id",
                        "type": "integer"
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookkeeper API",
	Description:      "Session ledger for small sellers: sales, expenses, debts and analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
