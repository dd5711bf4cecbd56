package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Nairobi Complaints API",
        "description": "Citizen complaint submission and review for Nairobi City County",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Accounts and cookie sessions"},
        {"name": "Complaints", "description": "Submission, listing and review"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/api/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a citizen account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CredentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/RegisterResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Log in and start a session",
                "description": "Sets an HttpOnly session cookie on success.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CredentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "End the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "500": {"description": "Session store failure", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Report the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionStatus"}}
                }
            }
        },
        "/api/complaints": {
            "post": {
                "tags": ["Complaints"],
                "summary": "Submit a complaint",
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "description", "in": "formData", "required": true, "type": "string"},
                    {"name": "image", "in": "formData", "required": false, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/SubmitComplaintResponse"}},
                    "400": {"description": "Empty description", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "401": {"description": "Not logged in", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "500": {"description": "Complaint saved but attachment failed; meta.complaintId is set", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/complaints/my-complaints": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List the caller's complaints",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ComplaintView"}}},
                    "401": {"description": "Not logged in", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/complaints/all": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List every complaint (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ComplaintView"}}},
                    "403": {"description": "Admin access required", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/complaints/export": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Download every complaint as CSV or PDF (admin)",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "403": {"description": "Admin access required", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        },
        "/api/complaints/{id}": {
            "put": {
                "tags": ["Complaints"],
                "summary": "Change a complaint's status (admin)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "403": {"description": "Admin access required", "schema": {"$ref": "#/definitions/ErrorEnvelope"}},
                    "404": {"description": "Complaint not found", "schema": {"$ref": "#/definitions/ErrorEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CredentialsRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Identity": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["citizen", "admin"]}
            }
        },
        "RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "userId": {"type": "integer"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/Identity"}
            }
        },
        "SessionStatus": {
            "type": "object",
            "properties": {
                "loggedIn": {"type": "boolean"},
                "user": {"$ref": "#/definitions/Identity"}
            }
        },
        "SubmitComplaintResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "complaintId": {"type": "integer"},
                "image": {"type": "string"}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Submitted", "In Progress", "Resolved"]}
            }
        },
        "ComplaintView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["Submitted", "In Progress", "Resolved"]},
                "submitted_at": {"type": "string", "format": "date-time"},
                "user_email": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
