// Package docs registers the OpenAPI document served at /swagger.
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
		"/books/{id}": {
			"get": {
				"tags": [
					"Books"
				],
				"summary": "Get a book snapshot",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations": {
			"post": {
				"tags": [
					"Book reservations"
				],
				"summary": "Place a book reservation",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/confirm": {
			"post": {
				"tags": [
					"Book reservations"
				],
				"summary": "Confirm a reservation log into a reservation",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/me": {
			"get": {
				"tags": [
					"Book reservations"
				],
				"summary": "List the caller's reservations",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/me/history": {
			"get": {
				"tags": [
					"Book reservations"
				],
				"summary": "Caller's reservation history, newest first",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/{id}": {
			"get": {
				"tags": [
					"Book reservations"
				],
				"summary": "Get one reservation",
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
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/{id}/cancel": {
			"post": {
				"tags": [
					"Book reservations"
				],
				"summary": "Cancel a reservation",
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
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/batch": {
			"post": {
				"tags": [
					"Batches"
				],
				"summary": "Create a batch of reservations",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/batch/cancel": {
			"post": {
				"tags": [
					"Batches"
				],
				"summary": "Cancel reservations with per-item results",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/book-reservations/batch/cancel-simple": {
			"post": {
				"tags": [
					"Batches"
				],
				"summary": "Bulk-cancel pending reservations",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/book-reservations/history": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Reservation history for any member",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/book-reservations/book/{bookId}": {
			"get": {
				"tags": [
					"Admin"
				],
				"summary": "Reservations for a book",
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
						"type": "string",
						"name": "bookId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/book-reservations/{id}/status": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Override a reservation status",
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
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/book-reservations/batch/delete": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Hard-delete reservations",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/reservation-logs": {
			"post": {
				"tags": [
					"Reservation logs"
				],
				"summary": "Stage a reservation intent",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/reservation-logs/me": {
			"get": {
				"tags": [
					"Reservation logs"
				],
				"summary": "List the caller's reservation logs",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/reservation-logs/{id}": {
			"delete": {
				"tags": [
					"Reservation logs"
				],
				"summary": "Delete a reservation log",
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
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/reservation-logs/batch-delete": {
			"post": {
				"tags": [
					"Reservation logs"
				],
				"summary": "Delete several reservation logs",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seats": {
			"get": {
				"tags": [
					"Seats"
				],
				"summary": "List seats with status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seats/time-slots": {
			"get": {
				"tags": [
					"Seats"
				],
				"summary": "List time slots",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seat-reservations/occupied": {
			"get": {
				"tags": [
					"Seat reservations"
				],
				"summary": "Occupied seat labels for a date and slot",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seat-reservations": {
			"post": {
				"tags": [
					"Seat reservations"
				],
				"summary": "Reserve a seat",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seat-reservations/cancel": {
			"post": {
				"tags": [
					"Seat reservations"
				],
				"summary": "Cancel a seat reservation",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/seat-reservations/me": {
			"get": {
				"tags": [
					"Seat reservations"
				],
				"summary": "List the caller's seat reservations",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/seats/{label}/broken": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Mark a seat broken",
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
						"type": "string",
						"name": "label",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/seats/{label}/available": {
			"patch": {
				"tags": [
					"Admin"
				],
				"summary": "Mark a seat available",
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
						"type": "string",
						"name": "label",
						"in": "path",
						"required": true
					},
					{
						"name": "body",
						"in": "body",
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
			}
		},
		"/admin/seat-reservations/sweep": {
			"post": {
				"tags": [
					"Admin"
				],
				"summary": "Run the expiry sweep now",
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
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Malformed request"
					},
					"401": {
						"description": "Missing or invalid token"
					},
					"403": {
						"description": "Admin role required"
					},
					"422": {
						"description": "Validation failed"
					}
				}
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Shelfkeeper API",
	Description:      "Book and seat reservations for the library.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
