package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Timetable engine: conflict checks, draft auto-generation and publishing.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Schedule",
            "description": "Committed schedule items"
        },
        {
            "name": "Drafts",
            "description": "Teacher draft items"
        },
        {
            "name": "Autogen",
            "description": "Draft generation and publishing"
        },
        {
            "name": "Catalog",
            "description": "Buildings, travel times and module plans"
        },
        {
            "name": "Observability",
            "description": "Metrics"
        }
    ],
    "paths": {
        "/schedule": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "List committed items of a week",
                "parameters": [
                    {
                        "name": "weekStart",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "courseId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Create a committed item",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/validate": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Check a placement against the committed schedule",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/clear": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Delete the unlocked committed items of a week",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ClearWeekRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedule/export": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Download a week of a group or teacher",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "weekStart",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/schedule/{id}": {
            "put": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Update a committed item",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Delete a committed item",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                }
            }
        },
        "/drafts": {
            "get": {
                "tags": [
                    "Drafts"
                ],
                "summary": "List drafts of a week",
                "parameters": [
                    {
                        "name": "weekStart",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "format": "date"
                    },
                    {
                        "name": "courseId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Create a draft",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/drafts/validate": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Check a draft placement and build its report",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/drafts/clear": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Delete the unlocked drafts of a week",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ClearWeekRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/drafts/revalidate": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Re-run the draft checks of a week",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RevalidateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/drafts/{id}": {
            "put": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Update a draft",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlacementRequest"
                        }
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Delete an unlocked draft",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "409": {
                        "description": "Locked"
                    }
                }
            }
        },
        "/drafts/{id}/lock": {
            "patch": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Lock or unlock a draft",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DraftLockRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Updated"
                    }
                }
            }
        },
        "/autogen/week": {
            "post": {
                "tags": [
                    "Autogen"
                ],
                "summary": "Generate drafts for one week",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutogenWeekRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/autogen/month": {
            "post": {
                "tags": [
                    "Autogen"
                ],
                "summary": "Generate drafts for every week overlapping a month",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutogenMonthRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/autogen/course-range": {
            "post": {
                "tags": [
                    "Autogen"
                ],
                "summary": "Generate drafts for the duration of a course",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutogenCourseRangeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/publish/week": {
            "post": {
                "tags": [
                    "Autogen"
                ],
                "summary": "Publish the valid drafts of a week",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PublishWeekRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/buildings": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List buildings",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Create a building and seed default travel times",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateBuildingRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/buildings/travel": {
            "put": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Set the travel time between two buildings",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TravelTimeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/courses/{id}/plans/ensure": {
            "post": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Create missing module plans from module credits",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/aggregates/recompute": {
            "post": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Recompute scheduled hours of plans and teacher loads",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Scheduler and HTTP counters",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "PlacementRequest": {
            "type": "object",
            "required": [
                "date",
                "startTime",
                "endTime",
                "groupId",
                "lessonTypeId"
            ],
            "properties": {
                "date": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "startTime": {
                    "type": "string",
                    "example": "08:30"
                },
                "endTime": {
                    "type": "string",
                    "example": "08:30"
                },
                "groupId": {
                    "type": "integer"
                },
                "moduleId": {
                    "type": "integer"
                },
                "topicId": {
                    "type": "integer"
                },
                "teacherId": {
                    "type": "integer"
                },
                "roomId": {
                    "type": "integer"
                },
                "lessonTypeId": {
                    "type": "integer"
                },
                "isLocked": {
                    "type": "boolean"
                },
                "allowNonWorkingDay": {
                    "type": "boolean"
                }
            }
        },
        "ClearWeekRequest": {
            "type": "object",
            "required": [
                "weekStart"
            ],
            "properties": {
                "weekStart": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "courseId": {
                    "type": "integer"
                },
                "groupId": {
                    "type": "integer"
                }
            }
        },
        "RevalidateRequest": {
            "type": "object",
            "required": [
                "weekStart"
            ],
            "properties": {
                "weekStart": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "teacherId": {
                    "type": "integer"
                }
            }
        },
        "DraftLockRequest": {
            "type": "object",
            "properties": {
                "locked": {
                    "type": "boolean"
                }
            }
        },
        "AutogenWeekRequest": {
            "type": "object",
            "required": [
                "weekStart"
            ],
            "properties": {
                "weekStart": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "clearExisting": {
                    "type": "boolean"
                },
                "courseId": {
                    "type": "integer"
                },
                "groupId": {
                    "type": "integer"
                },
                "teacherId": {
                    "type": "integer"
                },
                "allowOnDaysOff": {
                    "type": "boolean"
                },
                "dayPreset": {
                    "type": "string",
                    "enum": [
                        "MON_FRI",
                        "MON_SAT",
                        "MON_SUN"
                    ]
                }
            }
        },
        "AutogenMonthRequest": {
            "type": "object",
            "required": [
                "year",
                "month"
            ],
            "properties": {
                "year": {
                    "type": "integer"
                },
                "month": {
                    "type": "integer"
                },
                "clearExisting": {
                    "type": "boolean"
                },
                "courseId": {
                    "type": "integer"
                },
                "groupId": {
                    "type": "integer"
                },
                "teacherId": {
                    "type": "integer"
                },
                "allowOnDaysOff": {
                    "type": "boolean"
                },
                "dayPreset": {
                    "type": "string",
                    "enum": [
                        "MON_FRI",
                        "MON_SAT",
                        "MON_SUN"
                    ]
                }
            }
        },
        "PublishWeekRequest": {
            "type": "object",
            "required": [
                "weekStart"
            ],
            "properties": {
                "weekStart": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "teacherId": {
                    "type": "integer"
                }
            }
        },
        "CreateBuildingRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                }
            }
        },
        "TravelTimeRequest": {
            "type": "object",
            "required": [
                "buildingAId",
                "buildingBId",
                "minutes"
            ],
            "properties": {
                "buildingAId": {
                    "type": "integer"
                },
                "buildingBId": {
                    "type": "integer"
                },
                "minutes": {
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
                "details": {
                    "type": "object"
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
                "meta": {
                    "type": "object"
                }
            }
        },
        "AutogenCourseRangeRequest": {
            "type": "object",
            "required": [
                "startDate",
                "courseId"
            ],
            "properties": {
                "startDate": {
                    "type": "string",
                    "format": "date",
                    "example": "2025-03-10"
                },
                "clearExisting": {
                    "type": "boolean"
                },
                "courseId": {
                    "type": "integer"
                },
                "groupId": {
                    "type": "integer"
                },
                "teacherId": {
                    "type": "integer"
                },
                "allowOnDaysOff": {
                    "type": "boolean"
                },
                "dayPreset": {
                    "type": "string",
                    "enum": [
                        "MON_FRI",
                        "MON_SAT",
                        "MON_SUN"
                    ]
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
