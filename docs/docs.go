// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/api/v1/health": {
            "get": {"tags": ["health"], "summary": "Liveness, database and cache check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/v1/notifications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "List own notifications",
                "parameters": [
                    {"type": "integer", "description": "Page (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NotificationListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Create a notification for yourself",
                "parameters": [{"description": "Notification", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/dto.CreateNotificationRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NotificationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Delete all own notifications",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}}}
        },
        "/api/v1/notifications/unread-count": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Count own unread notifications",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UnreadCountResponse"}}}}
        },
        "/api/v1/notifications/mark-read": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark one notification read",
                "parameters": [{"description": "Notification id", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/dto.MarkReadRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}}
        },
        "/api/v1/notifications/read-all": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark all own notifications read",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}}}
        },
        "/api/v1/notifications/{notificationId}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Delete one notification",
                "parameters": [{"type": "string", "name": "notificationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}}}
        },
        "/api/v1/notifications/{notificationId}/read": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark one notification read",
                "parameters": [{"type": "string", "name": "notificationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}}}
        },
        "/api/v1/notifications/create-admin": {
            "post": {"tags": ["notifications"], "summary": "Create a notification for any user",
                "parameters": [
                    {"type": "string", "description": "Service credential", "name": "X-Service-Key", "in": "header", "required": true},
                    {"description": "Notification", "name": "request", "in": "body", "required": true,
                        "schema": {"$ref": "#/definitions/dto.CreatePrivilegedNotificationRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NotificationResponse"}},
                    "401": {"description": "Credential missing", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "403": {"description": "Credential wrong", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "500": {"description": "Credential not configured", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}}
        },
        "/api/v1/prescriptions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["prescriptions"], "summary": "List own prescriptions",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query", "enum": ["pending", "responded", "accepted", "cancelled"]},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PrescriptionListResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json", "multipart/form-data"],
                "tags": ["prescriptions"], "summary": "Upload a prescription",
                "parameters": [
                    {"type": "string", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "name": "notes", "in": "formData"},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PrescriptionResponse"}},
                    "413": {"description": "Image too large", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "415": {"description": "Unsupported image type", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}}
        },
        "/api/v1/prescriptions/open": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["prescriptions"], "summary": "List prescriptions open for offers",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PrescriptionListResponse"}}}}
        },
        "/api/v1/prescriptions/{prescriptionId}/responses": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["responses"], "summary": "List offers on a prescription",
                "parameters": [{"type": "string", "name": "prescriptionId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.PharmacyResponseResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["responses"], "summary": "Offer medicines for a prescription",
                "parameters": [
                    {"type": "string", "name": "prescriptionId", "in": "path", "required": true},
                    {"description": "Offer", "name": "request", "in": "body", "required": true,
                        "schema": {"$ref": "#/definitions/dto.CreatePharmacyResponseRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PharmacyResponseResponse"}},
                    "409": {"description": "Prescription closed", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}}}
        },
        "/api/v1/responses/{responseId}/accept": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["responses"], "summary": "Accept an offer",
                "parameters": [{"type": "string", "name": "responseId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PharmacyResponseResponse"}}}}
        }
    },
    "definitions": {
        "apperrors.ErrorResponse": {"type": "object", "properties": {"error": {"type": "object", "properties": {
            "code": {"type": "string"}, "domain": {"type": "string"}, "message": {"type": "string"}, "details": {"type": "object"}}}}},
        "dto.MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "dto.UnreadCountResponse": {"type": "object", "properties": {"unread_count": {"type": "integer"}}},
        "dto.MarkReadRequest": {"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}}},
        "dto.CreateNotificationRequest": {"type": "object", "required": ["title", "message"], "properties": {
            "userId": {"type": "string"}, "title": {"type": "string"}, "message": {"type": "string"},
            "type": {"type": "string"}, "data": {"type": "object"}}},
        "dto.CreatePrivilegedNotificationRequest": {"type": "object", "required": ["user_id", "title", "message"], "properties": {
            "user_id": {"type": "string"}, "title": {"type": "string"}, "message": {"type": "string"},
            "type": {"type": "string"}, "data": {"type": "object"}}},
        "dto.NotificationResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "user_id": {"type": "string"}, "type": {"type": "string"}, "title": {"type": "string"},
            "message": {"type": "string"}, "data": {"type": "object"}, "read": {"type": "boolean"},
            "read_at": {"type": "string"}, "created_at": {"type": "string"}}},
        "dto.NotificationListResponse": {"type": "object", "properties": {
            "notifications": {"type": "array", "items": {"$ref": "#/definitions/dto.NotificationResponse"}},
            "total": {"type": "integer"}, "page": {"type": "integer"}, "page_size": {"type": "integer"},
            "total_pages": {"type": "integer"}, "has_more": {"type": "boolean"}}},
        "dto.PrescriptionResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "patient_id": {"type": "string"}, "title": {"type": "string"}, "notes": {"type": "string"},
            "image_url": {"type": "string"}, "status": {"type": "string"}, "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "dto.PrescriptionListResponse": {"type": "object", "properties": {
            "prescriptions": {"type": "array", "items": {"$ref": "#/definitions/dto.PrescriptionResponse"}},
            "total": {"type": "integer"}, "page": {"type": "integer"}, "page_size": {"type": "integer"},
            "total_pages": {"type": "integer"}, "has_more": {"type": "boolean"}}},
        "dto.MedicineOffer": {"type": "object", "properties": {
            "name": {"type": "string"}, "quantity": {"type": "integer"}, "price": {"type": "number"}, "available": {"type": "boolean"}}},
        "dto.CreatePharmacyResponseRequest": {"type": "object", "required": ["medicines"], "properties": {
            "medicines": {"type": "array", "items": {"$ref": "#/definitions/dto.MedicineOffer"}},
            "currency": {"type": "string"}, "note": {"type": "string"}}},
        "dto.PharmacyResponseResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "prescription_id": {"type": "string"}, "pharmacy_id": {"type": "string"},
            "pharmacy_name": {"type": "string"}, "medicines": {"type": "array", "items": {"$ref": "#/definitions/dto.MedicineOffer"}},
            "total_price": {"type": "number"}, "currency": {"type": "string"}, "note": {"type": "string"},
            "status": {"type": "string"}, "created_at": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pharmacy Notifications API",
	Description:      "Notification gateway, prescriptions and pharmacy offers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
