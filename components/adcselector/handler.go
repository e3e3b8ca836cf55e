package adcselector

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Option is one catalog entry in the options payload.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type optionsResponse struct {
	Data []Option `json:"data"`
}

// CatalogHandler serves the catalog as {"data":[{value,label,description}]}.
// The token is read from store, or fetched through client and stored.
func CatalogHandler(client TemplateClient, store secrets.Store, fns ...OptionFn) http.Handler {
	return CatalogHandlerWithOptions(client, store, NewOptions(fns...))
}

// CatalogHandlerWithOptions builds the catalog handler from a pre-built Options value.
func CatalogHandlerWithOptions(client TemplateClient, store secrets.Store, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	if store == nil {
		store = secrets.NewMemoryStore(nil)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if !guard(w, r, opts) {
			return
		}
		if client == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		ctx := r.Context()
		token, ok := store.Get(secrets.GoogleOAuthToken)
		if !ok {
			fetched, err := client.GetAccessToken(ctx)
			if err != nil {
				opts.Logger.Error("adcselector: catalog token", "err", err)
				writeError(w, StatusError{Code: http.StatusUnauthorized, Err: err})
				return
			}
			store.Set(secrets.GoogleOAuthToken, fetched)
			token = fetched
		}

		list, err := client.GetTemplates(ctx, token)
		if err != nil {
			opts.Logger.Error("adcselector: catalog templates", "err", err)
			writeError(w, upstreamError(err))
			return
		}

		results := make([]Option, 0, len(list.Templates))
		for _, tpl := range list.Templates {
			results = append(results, Option{Value: tpl.ID, Label: tpl.Name, Description: tpl.Description})
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(optionsResponse{Data: results})
	})
}

// FieldHandler serves the field fragment. GET renders the current view; POST
// either retries (action=retry) or reports the posted template id through
// Select and renders the result.
func FieldHandler(field *Field, renderer *Renderer, fns ...OptionFn) http.Handler {
	return FieldHandlerWithOptions(field, renderer, NewOptions(fns...))
}

// FieldHandlerWithOptions builds the field handler from a pre-built Options value.
func FieldHandlerWithOptions(field *Field, renderer *Renderer, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if !guard(w, r, opts) {
			return
		}
		if field == nil || renderer == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			if r.PostForm.Get("action") == "retry" {
				if err := field.Retry(field.retryContext()); err != nil {
					writeError(w, StatusError{Code: http.StatusConflict, Err: err})
					return
				}
			} else if id := strings.TrimSpace(r.PostForm.Get(opts.FieldName)); id != "" {
				field.Select(id)
			} else {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := renderer.Render(field.View(), r.URL.Path, w); err != nil {
			opts.Logger.Error("adcselector: render field", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

func guard(w http.ResponseWriter, r *http.Request, opts Options) bool {
	if opts.Guard == nil {
		return true
	}
	if err := opts.Guard(r); err != nil {
		writeGuardError(w, err)
		return false
	}
	return true
}

func upstreamError(err error) StatusError {
	var statusErr *catalog.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return StatusError{Code: statusErr.StatusCode(), Err: err}
		}
	}
	return StatusError{Code: http.StatusBadGateway, Err: err}
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if c := httpErr.StatusCode(); c > 0 {
			code = c
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func writeError(w http.ResponseWriter, err StatusError) {
	code := err.StatusCode()
	message := http.StatusText(code)
	if err.Err != nil {
		message = err.Err.Error()
	}
	http.Error(w, message, code)
}
