package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Booking API",
        "description": "Class scheduling and enrollment engine for a sports school",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token refresh"},
        {"name": "Classes", "description": "Class session lifecycle and listings"},
        {"name": "Enrollments", "description": "Student enrollment and admin review"},
        {"name": "Instructors", "description": "Instructor assignments"},
        {"name": "CancellationRules", "description": "Refund-eligibility policies"},
        {"name": "Analytics", "description": "Admin dashboard counters"},
        {"name": "Notifications", "description": "User notification feed"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens rotated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired refresh token"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes with seat availability",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "discipline", "in": "query", "type": "string"},
                    {"name": "skillLevel", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/enroll": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll the authenticated student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Pending enrollment created"},
                    "400": {"description": "Class full, terminal or duplicate enrollment"}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Withdraw the authenticated student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Enrollment withdrawn"},
                    "400": {"description": "Not enrolled or class terminal"}
                }
            }
        },
        "/classes/me/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List own enrollments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/me/classes": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List classes assigned to the authenticated instructor",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications for the authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/classes": {
            "post": {
                "tags": ["Classes"],
                "summary": "Schedule a class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Class scheduled"},
                    "400": {"description": "Validation failure"}
                }
            },
            "get": {
                "tags": ["Classes"],
                "summary": "List classes (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/classes/{id}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Class detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Classes"],
                "summary": "Update a scheduled class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "400": {"description": "Not found or terminal state"}
                }
            }
        },
        "/admin/classes/{id}/cancel": {
            "post": {
                "tags": ["Classes"],
                "summary": "Cancel a scheduled class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled"},
                    "400": {"description": "Not found or terminal state"}
                }
            }
        },
        "/admin/classes/{id}/complete": {
            "post": {
                "tags": ["Classes"],
                "summary": "Mark a class as completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Completed"},
                    "400": {"description": "Not found or terminal state"}
                }
            }
        },
        "/admin/classes/{id}/instructors": {
            "get": {
                "tags": ["Instructors"],
                "summary": "List instructors assigned to a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Instructors"],
                "summary": "Assign an instructor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Assigned"},
                    "400": {"description": "Duplicate, wrong role or terminal class"}
                }
            }
        },
        "/admin/classes/{id}/instructors/{instructorId}": {
            "delete": {
                "tags": ["Instructors"],
                "summary": "Remove an instructor from a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "instructorId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Removed"},
                    "400": {"description": "Not assigned or terminal class"}
                }
            }
        },
        "/admin/classes/{id}/roster/export": {
            "get": {
                "tags": ["Classes"],
                "summary": "Export the approved roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Roster file"},
                    "400": {"description": "Not found or unsupported format"}
                }
            }
        },
        "/admin/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments for review",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/enrollments/{id}/approve": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Approve a pending enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Approved"},
                    "400": {"description": "Not found or not pending"}
                }
            }
        },
        "/admin/enrollments/{id}/deny": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Deny a pending enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Denied"},
                    "400": {"description": "Not found or not pending"}
                }
            }
        },
        "/admin/cancellation-rules": {
            "get": {
                "tags": ["CancellationRules"],
                "summary": "List cancellation rules",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["CancellationRules"],
                "summary": "Create and activate a rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCancellationRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"}
                }
            }
        },
        "/admin/cancellation-rules/active": {
            "get": {
                "tags": ["CancellationRules"],
                "summary": "Get the active rule",
                "responses": {
                    "200": {"description": "OK, data null when no rule is active"}
                }
            }
        },
        "/admin/cancellation-rules/{id}": {
            "patch": {
                "tags": ["CancellationRules"],
                "summary": "Update a rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "400": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["CancellationRules"],
                "summary": "Delete a rule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Not found"}
                }
            }
        },
        "/admin/analytics/dashboard": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Aggregate class and enrollment counts",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "required": ["discipline", "skill_level", "scheduled_at", "location", "max_capacity"],
            "properties": {
                "discipline": {"type": "string", "enum": ["SWIMMING", "TENNIS", "GYMNASTICS", "CLIMBING", "JUDO"]},
                "skill_level": {"type": "string", "enum": ["BEGINNER", "INTERMEDIATE", "ADVANCED"]},
                "scheduled_at": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "location": {"type": "string"},
                "max_capacity": {"type": "integer"}
            }
        },
        "AssignInstructorRequest": {
            "type": "object",
            "required": ["instructor_id"],
            "properties": {
                "instructor_id": {"type": "string"}
            }
        },
        "CreateCancellationRuleRequest": {
            "type": "object",
            "required": ["name", "hours_before_class"],
            "properties": {
                "name": {"type": "string"},
                "hours_before_class": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
