package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed data/catalog_openapi.yaml
var schemaFS embed.FS

const (
	schemaPath    = "data/catalog_openapi.yaml"
	templatesPath = "/adctemplates"
)

var (
	responseSchemaOnce sync.Once
	responseSchema     *openapi3.Schema
	responseSchemaErr  error
)

// ResponseSchema returns the JSON schema of a successful catalog listing, as
// declared by the embedded OpenAPI document.
func ResponseSchema() (*openapi3.Schema, error) {
	responseSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile(schemaPath)
		if err != nil {
			responseSchemaErr = err
			return
		}
		responseSchema, responseSchemaErr = loadResponseSchema(context.Background(), raw)
	})
	return responseSchema, responseSchemaErr
}

func loadResponseSchema(ctx context.Context, raw []byte) (*openapi3.Schema, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("catalog: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("catalog: validate openapi document: %w", err)
	}
	if doc.Paths == nil {
		return nil, errors.New("catalog: openapi document has no paths")
	}
	item := doc.Paths.Value(templatesPath)
	if item == nil || item.Get == nil || item.Get.Responses == nil {
		return nil, fmt.Errorf("catalog: openapi document missing GET %s", templatesPath)
	}
	ref := item.Get.Responses.Status(http.StatusOK)
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("catalog: openapi document missing 200 response for %s", templatesPath)
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("catalog: openapi document missing JSON schema for %s", templatesPath)
	}
	return media.Schema.Value, nil
}

// ValidatePayload checks a decoded JSON body against the response schema.
func ValidatePayload(payload any) error {
	schema, err := ResponseSchema()
	if err != nil {
		return err
	}
	if err := schema.VisitJSON(payload); err != nil {
		return fmt.Errorf("catalog: invalid response payload: %w", err)
	}
	return nil
}
