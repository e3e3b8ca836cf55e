package adcselector

import (
	"net/http"

	theme "github.com/goliatone/go-theme"
)

// DefaultPlaceholderCount is the number of skeleton cards shown while loading.
const DefaultPlaceholderCount = 9

// DefaultFieldName is the form field the selection is posted under.
const DefaultFieldName = "adcTemplate"

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath        string
	FieldPath        string
	FieldName        string
	PlaceholderCount int
	RequireSelection bool
	Guard            GuardFunc
	Logger           Logger
	Theme            *theme.RendererConfig
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:        "/api/adc-templates",
		FieldPath:        "/adc-selector",
		FieldName:        DefaultFieldName,
		PlaceholderCount: DefaultPlaceholderCount,
		Logger:           nopLogger{},
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/adc-templates"
	}
	if opts.FieldPath == "" {
		opts.FieldPath = "/adc-selector"
	}
	if opts.FieldName == "" {
		opts.FieldName = DefaultFieldName
	}
	if opts.PlaceholderCount <= 0 {
		opts.PlaceholderCount = DefaultPlaceholderCount
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithFieldPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FieldPath = path
	}
}

func WithFieldName(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FieldName = name
	}
}

func WithPlaceholderCount(count int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PlaceholderCount = count
	}
}

// WithRequireSelection makes Validate reject an empty value. The default
// validator accepts anything.
func WithRequireSelection(required bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RequireSelection = required
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithTheme applies go-theme partial, token, and CSS variable overrides to the
// HTML renderer.
func WithTheme(cfg *theme.RendererConfig) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Theme = cfg
	}
}
