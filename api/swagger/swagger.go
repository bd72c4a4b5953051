package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TeacherHub Gateway API",
        "description": "Backend-for-frontend for the teacher enquiry wizard and the marketplace admin console",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "AdminToken": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization",
            "description": "Token <value>"
        }
    },
    "tags": [
        {
            "name": "Wizard",
            "description": "Teacher enquiry wizard"
        },
        {
            "name": "Locations",
            "description": "Pincode and post office lookups"
        },
        {
            "name": "Catalog",
            "description": "Public class category catalog"
        },
        {
            "name": "Admin",
            "description": "Marketplace admin resources"
        },
        {
            "name": "Backups",
            "description": "Database backups"
        },
        {
            "name": "Exports",
            "description": "CSV and PDF exports"
        },
        {
            "name": "Audit",
            "description": "Admin audit trail"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Liveness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is down"
                    }
                }
            }
        },
        "/api/v1/wizard/sessions": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Start an enquiry wizard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/wizard/sessions/{id}": {
            "get": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Get wizard state",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Close the wizard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/teacher-type": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Choose the teacher type",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TeacherTypeRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/subjects": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Choose class category and subjects",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SubjectsRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/location": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Enter the pincode",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LocationRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/area": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Pick an area",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AreaRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/contact": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Save contact details",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ContactRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/filter": {
            "put": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Narrow the search results",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/FilterRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/next": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Advance to the next step",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/back": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Return to the previous step",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/search/retry": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Retry the teacher search",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/filter/reset": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Reset the results filter",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/wizard/sessions/{id}/submit": {
            "post": {
                "tags": [
                    "Wizard"
                ],
                "summary": "Submit the enquiry",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ContactRequest"
                        }
                    },
                    {
                        "name": "X-Wizard-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/locations/pincodes/{code}": {
            "get": {
                "tags": [
                    "Locations"
                ],
                "summary": "Resolve a pincode",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "code",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "state",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/locations/postoffices/{name}": {
            "get": {
                "tags": [
                    "Locations"
                ],
                "summary": "Search post offices by branch name",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/api/v1/catalog/class-categories": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List class categories with subjects",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/{resource}": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "List admin records",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "reports",
                            "examcenters",
                            "roles",
                            "questions",
                            "recruiters",
                            "interviews",
                            "passkeys",
                            "teachers"
                        ]
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create an admin record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "reports",
                            "examcenters",
                            "roles",
                            "questions",
                            "recruiters",
                            "interviews",
                            "passkeys",
                            "teachers"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Record"
                        }
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/{resource}/{id}": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Get an admin record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "reports",
                            "examcenters",
                            "roles",
                            "questions",
                            "recruiters",
                            "interviews",
                            "passkeys",
                            "teachers"
                        ]
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            },
            "patch": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update an admin record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "reports",
                            "examcenters",
                            "roles",
                            "questions",
                            "recruiters",
                            "interviews",
                            "passkeys",
                            "teachers"
                        ]
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Record"
                        }
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete an admin record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "reports",
                            "examcenters",
                            "roles",
                            "questions",
                            "recruiters",
                            "interviews",
                            "passkeys",
                            "teachers"
                        ]
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/passkeys/{id}/approve": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Approve a passkey request",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/passkeys/{id}/reject": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Reject a passkey request",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/teachers/search": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Search teachers",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "name": "class_category",
                        "in": "query",
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "name": "job_role",
                        "in": "query",
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "name": "skill",
                        "in": "query",
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "name": "pincode",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "score_min",
                        "in": "query",
                        "type": "number"
                    },
                    {
                        "name": "score_max",
                        "in": "query",
                        "type": "number"
                    },
                    {
                        "name": "experience_min",
                        "in": "query",
                        "type": "number"
                    },
                    {
                        "name": "experience_max",
                        "in": "query",
                        "type": "number"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/backups": {
            "get": {
                "tags": [
                    "Backups"
                ],
                "summary": "List backups",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Backups"
                ],
                "summary": "Take a backup",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/backups/restore": {
            "post": {
                "tags": [
                    "Backups"
                ],
                "summary": "Restore a backup",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RestoreBackupRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/exports/{resource}": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Export an admin list",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "File download, or JSON for datauri"
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "recruiters",
                            "interviews"
                        ]
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "datauri"
                        ]
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/audit-logs": {
            "get": {
                "tags": [
                    "Audit"
                ],
                "summary": "List audit log entries",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "resource",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "action",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "actor",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        },
        "/api/v1/admin/metrics/summary": {
            "get": {
                "tags": [
                    "Metrics"
                ],
                "summary": "Gateway metrics snapshot",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "AdminToken": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "TeacherTypeRequest": {
            "type": "object",
            "properties": {
                "teacher_type": {
                    "type": "string",
                    "enum": [
                        "school",
                        "coaching",
                        "personal"
                    ]
                }
            }
        },
        "SubjectsRequest": {
            "type": "object",
            "properties": {
                "class_category_id": {
                    "type": "integer"
                },
                "subject_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "LocationRequest": {
            "type": "object",
            "properties": {
                "pincode": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                }
            }
        },
        "AreaRequest": {
            "type": "object",
            "properties": {
                "area": {
                    "type": "string"
                }
            }
        },
        "ContactRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "contact": {
                    "type": "string"
                }
            }
        },
        "FilterRequest": {
            "type": "object",
            "properties": {
                "class_category_id": {
                    "type": "integer"
                },
                "subject_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "pincode": {
                    "type": "string"
                }
            }
        },
        "RestoreBackupRequest": {
            "type": "object",
            "properties": {
                "backup": {
                    "type": "string"
                }
            }
        },
        "Record": {
            "type": "object",
            "additionalProperties": true
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "level": {
                    "type": "string",
                    "enum": [
                        "success",
                        "error",
                        "info"
                    ]
                },
                "message": {
                    "type": "string"
                },
                "field": {
                    "type": "string"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "notification": {
                    "$ref": "#/definitions/Notification"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
