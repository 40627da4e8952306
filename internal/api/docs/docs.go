// Package docs holds the Swagger specification for stormgrab's management
// API. The template is written by hand in the shape `swag init` output
// takes, and is kept in step with the annotations in internal/api/handlers.
package docs

import (
	"github.com/swaggo/swag"
)

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
                "description": "Returns process health, including store connectivity if a store is attached",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.StatusResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/stats": {
            "get": {
                "description": "Returns the live scan counters, in-flight count, and host CPU/memory usage",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Scan statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.ServerStatsResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        },
        "models.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                }
            }
        },
        "models.CPUStats": {
            "type": "object",
            "properties": {
                "idle_percent": {
                    "type": "number"
                },
                "num_cpu": {
                    "type": "integer"
                },
                "used_percent": {
                    "type": "number"
                }
            }
        },
        "models.MemoryStats": {
            "type": "object",
            "properties": {
                "free_mb": {
                    "type": "number"
                },
                "total_mb": {
                    "type": "number"
                },
                "used_mb": {
                    "type": "number"
                },
                "used_percent": {
                    "type": "number"
                }
            }
        },
        "models.ScanStats": {
            "type": "object",
            "properties": {
                "completed": {
                    "type": "integer"
                },
                "connected": {
                    "type": "integer"
                },
                "in_flight": {
                    "type": "integer"
                },
                "initiated": {
                    "type": "integer"
                },
                "matched": {
                    "type": "integer"
                }
            }
        },
        "models.ServerStatsResponse": {
            "type": "object",
            "properties": {
                "cpu": {
                    "$ref": "#/definitions/models.CPUStats"
                },
                "memory": {
                    "$ref": "#/definitions/models.MemoryStats"
                },
                "run_id": {
                    "type": "string"
                },
                "scan": {
                    "$ref": "#/definitions/models.ScanStats"
                },
                "start_time": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                },
                "uptime_seconds": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "stormgrab Management API",
	Description:      "Read-only health and scan-statistics endpoints for a running stormgrab scan.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
