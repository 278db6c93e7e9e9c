package catalog

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/labcert/internal/common"
)

var catalogSchemaOnce = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return common.CompileSchema("catalog.json", BuildCatalogJSONSchema())
})

// BuildCatalogJSONSchema returns the structural schema of a catalog file.
func BuildCatalogJSONSchema() map[string]any {
	stringList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	param := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"label":    map[string]any{"type": "string"},
			"aliases":  stringList,
			"policy":   map[string]any{"type": "string"},
			"exclude":  stringList,
			"annotate": stringList,
			"rule":     map[string]any{"type": "string"},
		},
	}
	params := map[string]any{
		"type":                 "object",
		"additionalProperties": param,
	}
	product := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"name", "required"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
			"required": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string", "minLength": 1},
			},
			"critical": stringList,
			"specs": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": []string{"string", "number"}},
			},
			"parameters": params,
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"products"},
		"properties": map[string]any{
			"detection_limit":  map[string]any{"type": "number", "minimum": 0},
			"product_keywords": stringList,
			"parameters":       params,
			"products": map[string]any{
				"type":  "array",
				"items": product,
			},
		},
	}
}
