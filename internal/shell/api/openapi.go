package api

import (
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// OpenAPI Specification
// =============================================================================

var (
	specOnce   sync.Once
	cachedSpec *openapi3.T
)

// handleOpenAPI serves the API description. The surface is small enough to
// declare by hand; the document is built once and cached.
func (h *Handler) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	specOnce.Do(func() {
		cachedSpec = buildSpec(h.config.Version)
	})

	h.writeJSON(w, http.StatusOK, cachedSpec)
}

// buildSpec constructs the OpenAPI 3.0 document for the status API.
func buildSpec(version string) *openapi3.T {
	if version == "" {
		version = "dev"
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "kindstack status API",
			Version:     version,
			Description: "Stack state, run history and connectivity checks for the local kind stack.",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: "http://127.0.0.1:7788"},
		},
		Paths: &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	addSchemas(spec)
	addPaths(spec)

	return spec
}

func addSchemas(spec *openapi3.T) {
	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"code": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
			},
		},
	}

	spec.Components.Schemas["ServiceState"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"name": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"mode": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Enum: []any{"real", "mock"}},
				},
				"found": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"ready": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"ready_replicas": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}},
				},
				"desired_replicas": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}},
				},
				"created_at": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
				},
			},
		},
	}

	spec.Components.Schemas["Run"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "uuid"},
				},
				"cluster": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"namespace": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"real_services": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{
							Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
						},
					},
				},
				"seed": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"database": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"modes": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"object"}},
				},
				"status": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Enum: []any{"running", "succeeded", "failed"}},
				},
				"error_message": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"started_at": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
				},
				"finished_at": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
				},
			},
		},
	}

	spec.Components.Schemas["CheckResult"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"service": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"url": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "uri"},
				},
				"healthy": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}},
				},
				"status_code": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}},
				},
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
			},
		},
	}

	spec.Components.Schemas["Status"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"cluster": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"object"}},
				},
				"database": &openapi3.SchemaRef{
					Ref: "#/components/schemas/ServiceState",
				},
				"services": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"array"},
						Items: &openapi3.SchemaRef{
							Ref: "#/components/schemas/ServiceState",
						},
					},
				},
				"last_run": &openapi3.SchemaRef{
					Ref: "#/components/schemas/Run",
				},
			},
		},
	}
}

func addPaths(spec *openapi3.T) {
	spec.Paths.Set("/health", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getHealth",
			Summary:     "Liveness of the status server itself",
			Tags:        []string{"Health"},
			Responses:   jsonResponse("server is up", ""),
		},
	})

	spec.Paths.Set("/api/v1/status", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getStatus",
			Summary:     "Aggregated stack state",
			Tags:        []string{"Status"},
			Responses:   jsonResponse("current stack state", "Status"),
		},
	})

	spec.Paths.Set("/api/v1/runs", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listRuns",
			Summary:     "Run history, newest first",
			Tags:        []string{"Runs"},
			Parameters: openapi3.Parameters{
				&openapi3.ParameterRef{
					Value: &openapi3.Parameter{
						Name: "limit",
						In:   "query",
						Schema: &openapi3.SchemaRef{
							Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Default: 20},
						},
					},
				},
				&openapi3.ParameterRef{
					Value: &openapi3.Parameter{
						Name: "offset",
						In:   "query",
						Schema: &openapi3.SchemaRef{
							Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Default: 0},
						},
					},
				},
			},
			Responses: jsonResponse("page of runs", ""),
		},
	})

	spec.Paths.Set("/api/v1/runs/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "getRun",
			Summary:     "A single run",
			Tags:        []string{"Runs"},
			Parameters: openapi3.Parameters{
				&openapi3.ParameterRef{
					Value: &openapi3.Parameter{
						Name:     "id",
						In:       "path",
						Required: true,
						Schema: &openapi3.SchemaRef{
							Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
						},
					},
				},
			},
			Responses: jsonResponse("the run", "Run"),
		},
	})

	spec.Paths.Set("/api/v1/checks", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "runChecks",
			Summary:     "Probe every service endpoint now",
			Tags:        []string{"Checks"},
			Responses:   jsonResponse("check outcomes", ""),
		},
	})
}

// jsonResponse builds a single-200 response set, optionally referencing a
// component schema.
func jsonResponse(description, schemaName string) *openapi3.Responses {
	resp := &openapi3.Response{Description: &description}
	if schemaName != "" {
		resp.Content = openapi3.Content{
			"application/json": &openapi3.MediaType{
				Schema: &openapi3.SchemaRef{
					Ref: "#/components/schemas/" + schemaName,
				},
			},
		}
	}

	responses := &openapi3.Responses{}
	responses.Set("200", &openapi3.ResponseRef{Value: resp})
	return responses
}
