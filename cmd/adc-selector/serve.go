package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-adc-selector/components/adcselector"
	"github.com/goliatone/go-adc-selector/internal/config"
	rendertemplate "github.com/goliatone/go-adc-selector/pkg/render/template"
	"github.com/goliatone/go-adc-selector/pkg/render/template/pongo"
	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/*.tpl
var hostTemplates embed.FS

func newHostEngine() (*pongo.Engine, error) {
	sub, err := fs.Sub(hostTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return pongo.New(pongo.WithFS(sub))
}

func newServeCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo form hosting the template selector",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}
	cmd.Flags().String("listen", ":8080", "address to listen on")
	return cmd
}

func serve(ctx context.Context, rt *runtime) error {
	logger := rt.logger
	component, err := adcselector.New(rt.client, secrets.NewMemoryStore(nil),
		adcselector.WithLogger(logger),
		adcselector.WithRequireSelection(rt.cfg.RequireSelection),
		adcselector.WithTheme(themeConfig(rt.cfg)),
	)
	if err != nil {
		return err
	}

	var field *adcselector.Field
	field = component.NewField(adcselector.Props{
		Required: rt.cfg.RequireSelection,
		OnChange: func(value string) {
			logger.Info("template selected", "id", value)
			field.SetRawErrors(component.Validate(value))
			field.SetFormData(value)
		},
	})
	field.Mount(ctx)
	defer field.Unmount()

	mux := http.NewServeMux()
	patterns, err := component.RegisterRoutes(mux, "", field)
	if err != nil {
		return err
	}
	host, err := newHostEngine()
	if err != nil {
		return fmt.Errorf("host page: %w", err)
	}
	mux.Handle("/", hostHandler(ctx, field, component.Renderer(), host))

	srv := &http.Server{
		Addr:              rt.cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", rt.cfg.Listen, "routes", strings.Join(patterns, ", "), "simulate", rt.cfg.Simulate)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// hostHandler renders the demo page around the field fragment. Posts from the
// fragment land here and redirect back so a reload does not resubmit. Retries
// run under ctx rather than the request, which ends with the redirect.
func hostHandler(ctx context.Context, field *adcselector.Field, renderer *adcselector.Renderer, page rendertemplate.TemplateRenderer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			if r.PostForm.Get("action") == "retry" {
				_ = field.Retry(ctx)
			} else if id := strings.TrimSpace(r.PostForm.Get(field.View().FieldName)); id != "" {
				field.Select(id)
			} else {
				http.Error(w, "missing template id", http.StatusBadRequest)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		default:
			w.Header().Set("Allow", "GET, HEAD, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		view := field.View()
		fragment, err := renderer.Render(view, "/")
		if err != nil {
			http.Error(w, fmt.Sprintf("render field: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := page.RenderTemplate("host", map[string]any{
			"field":    fragment,
			"loading":  view.Loading && !view.Failed,
			"selected": view.Selected,
			"errors":   field.Validate(view.Selected),
		}, w); err != nil {
			http.Error(w, fmt.Sprintf("render page: %v", err), http.StatusInternalServerError)
		}
	})
}

func themeConfig(cfg config.Config) *theme.RendererConfig {
	if len(cfg.Theme) == 0 {
		return nil
	}
	tokens := make(map[string]string, len(cfg.Theme))
	cssVars := make(map[string]string)
	for key, value := range cfg.Theme {
		if strings.HasPrefix(key, "--") {
			cssVars[key] = value
			continue
		}
		tokens[key] = value
	}
	return &theme.RendererConfig{
		Tokens:  tokens,
		CSSVars: cssVars,
	}
}
