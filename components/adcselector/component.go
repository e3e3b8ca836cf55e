package adcselector

import (
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

// Component bundles the catalog client, the session store, and the options
// shared by every field it creates.
type Component struct {
	client   TemplateClient
	store    secrets.Store
	opts     Options
	tokens   *singleflight.Group
	renderer *Renderer
}

// New constructs a component with default options plus any overrides. A nil
// store gets an in-memory one.
func New(client TemplateClient, store secrets.Store, fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	if store == nil {
		store = secrets.NewMemoryStore(nil)
	}
	renderer, err := NewRenderer(nil, opts.Theme)
	if err != nil {
		return nil, err
	}
	return &Component{
		client:   client,
		store:    store,
		opts:     opts,
		tokens:   &singleflight.Group{},
		renderer: renderer,
	}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Store returns the session store shared by the component's fields.
func (c *Component) Store() secrets.Store {
	return c.store
}

// Renderer returns the HTML renderer.
func (c *Component) Renderer() *Renderer {
	return c.renderer
}

// NewField builds an unmounted field sharing the component's store and token
// acquisition.
func (c *Component) NewField(props Props) *Field {
	return NewField(c.client, c.store, props, c.opts, WithTokenGroup(c.tokens))
}

// Validate is the field validator registered with the host form.
func (c *Component) Validate(value string) []string {
	return validate(c.opts, value)
}

// CatalogHandler returns the catalog options handler.
func (c *Component) CatalogHandler() http.Handler {
	return CatalogHandlerWithOptions(c.client, c.store, c.opts)
}

// FieldHandler returns the fragment handler for field.
func (c *Component) FieldHandler(field *Field) http.Handler {
	return FieldHandlerWithOptions(field, c.renderer, c.opts)
}

// RegisterRoutes registers the catalog route and, when field is non-nil, the
// field fragment route under basePath.
func (c *Component) RegisterRoutes(mux Mux, basePath string, field *Field) ([]string, error) {
	catalogPattern, err := RegisterCatalogRoute(mux, basePath, c.client, c.store, c.opts)
	if err != nil {
		return nil, err
	}
	patterns := []string{catalogPattern}
	if field == nil {
		return patterns, nil
	}
	fieldPattern, err := RegisterFieldRoute(mux, basePath, field, c.renderer, c.opts)
	if err != nil {
		return nil, err
	}
	return append(patterns, fieldPattern), nil
}
