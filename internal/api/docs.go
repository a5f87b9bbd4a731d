// Package api serves the proxy's OpenAPI document.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var specYAML []byte

type document struct {
	json string
}

func (d document) ReadDoc() string {
	return d.json
}

var registerOnce sync.Once

// LoadSpec parses and validates the embedded document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// RegisterDocsRoutes publishes the document through swag and mounts it at
// GET /docs/openapi.json.
func RegisterDocsRoutes(mux *http.ServeMux) error {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return err
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode openapi document: %w", err)
	}

	registerOnce.Do(func() {
		swag.Register(swag.Name, document{json: string(raw)})
	})

	mux.HandleFunc("GET /docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		body, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "documentation unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	return nil
}
