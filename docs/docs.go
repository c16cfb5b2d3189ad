// Package docs registers the OpenAPI document served under /swagger. It
// follows the layout swag init writes, so running
// swag init -g cmd/api/main.go regenerates it from the handler annotations.
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
        "/catalog": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Catalog status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.CatalogInfoResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/catalog/refresh": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Refresh catalog",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.CatalogInfoResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "502": {
                        "description": "Lecture API is unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/departments": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "List departments",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "type": "string"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "503": {
                        "description": "Catalog not loaded",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/courses": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Search courses",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Exact department name",
                        "name": "department",
                        "in": "query"
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Grades",
                        "name": "grade",
                        "in": "query"
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Course type substrings",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Day labels",
                        "name": "day",
                        "in": "query"
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Credits",
                        "name": "credit",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Search term",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number (1-based)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.CourseListResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid filters",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "courses"
                ],
                "summary": "Get course by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.CourseResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Course not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetable": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Current timetable",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TimetableResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Malformed share code",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetable/courses": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Add course",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    },
                    {
                        "description": "Course to add",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.AddCourseRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TimetableResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Unknown course",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Already selected or time conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetable/courses/{id}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Remove course",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Course ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TimetableResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Course not selected",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetable/share": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Share link",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.ShareResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/timetable/image": {
            "get": {
                "produces": [
                    "image/png"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Timetable image",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "500": {
                        "description": "Rendering failed",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetable/xlsx": {
            "get": {
                "produces": [
                    "application/octet-stream"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Timetable spreadsheet",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/timetable/exports": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Store timetable image",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Share code",
                        "name": "share",
                        "in": "query"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.ExportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/timetable/exports/{name}": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetable"
                ],
                "summary": "Delete stored image",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Export file name",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.APIResponse"
                        }
                    },
                    "404": {
                        "description": "Unknown export",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetables": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetables"
                ],
                "summary": "Save timetable",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Course IDs",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SaveTimetableRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.SavedTimetableResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "No known courses",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "timetables"
                ],
                "summary": "Get saved timetable",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Saved timetable ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.SavedTimetableResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Saved timetable not found",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "AddCourseRequest": {
            "type": "object",
            "required": [
                "courseId"
            ],
            "properties": {
                "courseId": {
                    "type": "string",
                    "maxLength": 64
                }
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "required": [
                "courseIds"
            ],
            "properties": {
                "courseIds": {
                    "type": "array",
                    "maxItems": 64,
                    "minItems": 1,
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "APIResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "message": {
                    "type": "string"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorDetail"
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "TT_002"
                },
                "message": {
                    "type": "string",
                    "example": "이미 선택한 과목이에요!"
                },
                "field": {
                    "type": "string",
                    "example": "courseId"
                },
                "severity": {
                    "type": "string",
                    "example": "ERROR"
                },
                "details": {}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": false
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorDetail"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2025-04-23T12:01:05.123Z"
                }
            }
        },
        "PaginationInfo": {
            "type": "object",
            "properties": {
                "currentPage": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                },
                "pageSize": {
                    "type": "integer"
                },
                "totalItems": {
                    "type": "integer"
                },
                "hasMore": {
                    "type": "boolean"
                }
            }
        },
        "CourseResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "example": "20231-0001"
                },
                "name": {
                    "type": "string",
                    "example": "자료구조"
                },
                "department": {
                    "type": "string",
                    "example": "컴퓨터공학부"
                },
                "grade": {
                    "type": "integer",
                    "example": 2
                },
                "time": {
                    "type": "string",
                    "example": "월1~3"
                },
                "credits": {
                    "type": "integer",
                    "example": 3
                },
                "professor": {
                    "type": "string",
                    "example": "홍길동"
                },
                "notice": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "example": "전공필수"
                },
                "places": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "color": {
                    "type": "string",
                    "example": "hsl(210, 93%, 93%)"
                }
            }
        },
        "CourseListResponse": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.CourseResponse"
                    }
                },
                "pagination": {
                    "$ref": "#/definitions/dto.PaginationInfo"
                },
                "query": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "CatalogInfoResponse": {
            "type": "object",
            "properties": {
                "fetchedAt": {
                    "type": "string",
                    "example": "2025-03-01 09:00"
                },
                "courseCount": {
                    "type": "integer",
                    "example": 1830
                },
                "departments": {
                    "type": "integer",
                    "example": 42
                },
                "fromCache": {
                    "type": "boolean"
                }
            }
        },
        "GridCell": {
            "type": "object",
            "properties": {
                "day": {
                    "type": "string",
                    "example": "월"
                },
                "period": {
                    "type": "integer",
                    "example": 1
                },
                "empty": {
                    "type": "boolean"
                },
                "courseId": {
                    "type": "string"
                },
                "rowSpan": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "meta": {
                    "type": "string"
                },
                "places": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "placeText": {
                    "type": "string"
                },
                "color": {
                    "type": "string"
                }
            }
        },
        "GridRow": {
            "type": "object",
            "properties": {
                "period": {
                    "type": "integer"
                },
                "cells": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.GridCell"
                    }
                }
            }
        },
        "ExtraRow": {
            "type": "object",
            "properties": {
                "courseId": {
                    "type": "string"
                },
                "label": {
                    "type": "string",
                    "example": "현장실습 (미지정)"
                },
                "color": {
                    "type": "string"
                }
            }
        },
        "SkippedCourse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "TimetableResponse": {
            "type": "object",
            "properties": {
                "courseIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "courses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.CourseResponse"
                    }
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.GridRow"
                    }
                },
                "extras": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ExtraRow"
                    }
                },
                "credits": {
                    "type": "integer",
                    "example": 18
                },
                "shareCode": {
                    "type": "string",
                    "example": "WyIwMDAxIl0="
                },
                "shareLink": {
                    "type": "string"
                },
                "skipped": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.SkippedCourse"
                    }
                }
            }
        },
        "ShareResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "link": {
                    "type": "string"
                }
            }
        },
        "ExportResponse": {
            "type": "object",
            "properties": {
                "fileName": {
                    "type": "string"
                },
                "url": {
                    "type": "string"
                },
                "fileSize": {
                    "type": "integer"
                },
                "mimeType": {
                    "type": "string"
                }
            }
        },
        "SavedTimetableResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "timetable": {
                    "$ref": "#/definitions/dto.TimetableResponse"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Lecture Timetable API",
	Description:      "Course catalog, weekly timetable and share links for university lectures",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
