package adcselector

import (
	"embed"
	"fmt"
	"html"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	rendertemplate "github.com/goliatone/go-adc-selector/pkg/render/template"
	"github.com/goliatone/go-adc-selector/pkg/render/template/pongo"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

const (
	// PartialKey is the go-theme partial that overrides the field template.
	PartialKey = "adc.selector"
	// SelectedBackgroundToken is the go-theme token for the highlight colour.
	SelectedBackgroundToken = "adc-selected-background"

	defaultTemplate           = "adc_selector"
	defaultSelectedBackground = "rgba(0, 0, 0, 0.12)"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Renderer turns a View into the HTML field fragment.
type Renderer struct {
	engine rendertemplate.TemplateRenderer
	theme  *theme.RendererConfig
}

// NewRenderer builds a renderer backed by the embedded template. engine may be
// nil to use the default pongo2 engine.
func NewRenderer(engine rendertemplate.TemplateRenderer, cfg *theme.RendererConfig) (*Renderer, error) {
	if engine == nil {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("adcselector: templates fs: %w", err)
		}
		built, err := pongo.New(pongo.WithFS(sub))
		if err != nil {
			return nil, fmt.Errorf("adcselector: template engine: %w", err)
		}
		engine = built
	}
	return &Renderer{engine: engine, theme: cfg}, nil
}

// Render writes the field for view. action is the URL card clicks post to.
func (r *Renderer) Render(view View, action string, out ...io.Writer) (string, error) {
	if r == nil || r.engine == nil {
		return "", fmt.Errorf("adcselector: renderer not configured")
	}

	view = sanitizeView(view)
	slots := make([]int, 0, view.Placeholders)
	for i := 0; i < view.Placeholders; i++ {
		slots = append(slots, i)
	}

	payload := map[string]any{
		"view":                view,
		"action":              action,
		"placeholder_slots":   slots,
		"selected_background": r.selectedBackground(),
		"theme_style":         r.themeStyle(),
	}

	rendered, err := r.engine.RenderTemplate(r.templateName(), payload, out...)
	if err != nil {
		return "", fmt.Errorf("adcselector: render field: %w", err)
	}
	return rendered, nil
}

func (r *Renderer) templateName() string {
	if r.theme != nil {
		if candidate := strings.TrimSpace(r.theme.Partials[PartialKey]); candidate != "" {
			return candidate
		}
	}
	return defaultTemplate
}

func (r *Renderer) selectedBackground() string {
	if r.theme != nil {
		if token := strings.TrimSpace(r.theme.Tokens[SelectedBackgroundToken]); token != "" {
			return token
		}
	}
	return defaultSelectedBackground
}

func (r *Renderer) themeStyle() string {
	if r.theme == nil || len(r.theme.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r.theme.CSSVars))
	for key := range r.theme.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+r.theme.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

// sanitizeView strips markup from catalog-supplied text. The template engine
// escapes the result again, so entities are decoded here to avoid double
// escaping.
func sanitizeView(view View) View {
	policy := plainTextPolicy()
	cards := make([]Card, len(view.Cards))
	for i, card := range view.Cards {
		card.Name = plainText(policy, card.Name)
		card.Description = plainText(policy, card.Description)
		cards[i] = card
	}
	view.Cards = cards
	view.Error = plainText(policy, view.Error)
	return view
}

func plainText(policy *bluemonday.Policy, raw string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(raw)))
}

func plainTextPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
