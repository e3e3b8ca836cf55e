package adcselector

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the catalog route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// FieldMountPath returns the field fragment route under basePath.
func FieldMountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.FieldPath)
}

// RegisterCatalogRoute registers the catalog options handler under basePath.
func RegisterCatalogRoute(mux Mux, basePath string, client TemplateClient, store secrets.Store, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("adcselector: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.RoutePath)
	mux.Handle(pattern, CatalogHandlerWithOptions(client, store, opts))
	return pattern, nil
}

// RegisterFieldRoute registers the field fragment handler under basePath.
func RegisterFieldRoute(mux Mux, basePath string, field *Field, renderer *Renderer, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("adcselector: missing mux")
	}
	if field == nil {
		return "", fmt.Errorf("adcselector: missing field")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.FieldPath)
	mux.Handle(pattern, FieldHandlerWithOptions(field, renderer, opts))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
