package adcselector

import (
	"io"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-adc-selector/pkg/testsupport"
)

func newTestRenderer(t *testing.T, cfg *theme.RendererConfig) *Renderer {
	t.Helper()
	renderer, err := NewRenderer(nil, cfg)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestRenderer_LoadingShowsNineSkeletons(t *testing.T) {
	renderer := newTestRenderer(t, nil)
	view := NewField(nil, nil, Props{}, NewOptions()).View()

	out, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return renderer.Render(view, "/adc-selector", w)
	})
	if written != out {
		t.Fatalf("writer and return value differ")
	}
	if got := strings.Count(out, "adc-card--skeleton"); got != 9 {
		t.Fatalf("expected 9 skeleton cards, got %d", got)
	}
	if got := strings.Count(out, `class="adc-skeleton"`); got != 18 {
		t.Fatalf("expected two bars per skeleton, got %d", got)
	}
	if !strings.Contains(out, `role="progressbar"`) {
		t.Fatalf("expected progress bar while loading")
	}
	if !strings.Contains(out, "grid-cols-1 sm:grid-cols-2 md:grid-cols-3") {
		t.Fatalf("expected responsive grid classes")
	}
	if strings.Contains(out, `role="option"`) {
		t.Fatalf("did not expect real cards while loading")
	}
}

func TestRenderer_ReadyHighlightsSelectedCard(t *testing.T) {
	renderer := newTestRenderer(t, nil)
	view := View{
		FieldName: "adcTemplate",
		State:     StateReady,
		Cards:     BuildCards(threeTemplates(), "b"),
		Selected:  "b",
	}

	out, err := renderer.Render(view, "/adc-selector")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(out, `role="option"`); got != 3 {
		t.Fatalf("expected 3 cards, got %d", got)
	}
	if got := strings.Count(out, `aria-selected="true"`); got != 1 {
		t.Fatalf("expected exactly one selected card, got %d", got)
	}
	if !strings.Contains(out, `value="b" class="adc-card adc-card--selected"`) {
		t.Fatalf("expected card b to be highlighted:\n%s", out)
	}
	if !strings.Contains(out, "background-color: rgba(0, 0, 0, 0.12)") {
		t.Fatalf("expected default highlight colour")
	}
	if strings.Contains(out, "adc-card--skeleton") {
		t.Fatalf("did not expect skeletons once ready")
	}
	for _, text := range []string{"Alpha", "Beta", "Gamma", "first", "second", "third"} {
		if !strings.Contains(out, text) {
			t.Fatalf("missing %q in output", text)
		}
	}
}

func TestRenderer_FailedShowsRetry(t *testing.T) {
	renderer := newTestRenderer(t, nil)
	view := View{FieldName: "adcTemplate", State: StateFailed, Loading: true, Failed: true, Error: "Service Unavailable", Placeholders: 9, Cards: []Card{}}

	out, err := renderer.Render(view, "/adc-selector")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Failed to load templates: Service Unavailable") {
		t.Fatalf("expected error message:\n%s", out)
	}
	if !strings.Contains(out, `name="action" value="retry"`) {
		t.Fatalf("expected retry button")
	}
	if strings.Contains(out, "adc-card--skeleton") {
		t.Fatalf("did not expect skeletons in the failed state")
	}
}

func TestRenderer_SanitizesCatalogText(t *testing.T) {
	renderer := newTestRenderer(t, nil)
	list := testsupport.LoadTemplates(t, "testdata/untrusted_catalog.yaml")
	view := View{
		FieldName: "adcTemplate",
		State:     StateReady,
		Cards:     BuildCards(list.Templates, ""),
	}

	out, err := renderer.Render(view, "/adc-selector")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Fatalf("markup leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "Cloud SQL &amp; friends") {
		t.Fatalf("expected single-escaped ampersand:\n%s", out)
	}
	if !strings.Contains(out, "Google Cloud") {
		t.Fatalf("expected stripped description text:\n%s", out)
	}
}

func TestRenderer_ThemeOverrides(t *testing.T) {
	renderer := newTestRenderer(t, &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens: map[string]string{
			SelectedBackgroundToken: "#123456",
		},
		CSSVars: map[string]string{
			"--brand":  "#123456",
			"--accent": "#abcdef",
		},
	})
	view := View{FieldName: "adcTemplate", State: StateReady, Cards: BuildCards(threeTemplates(), "a")}

	out, err := renderer.Render(view, "/adc-selector")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "background-color: #123456") {
		t.Fatalf("expected themed highlight colour:\n%s", out)
	}
	if !strings.Contains(out, `style="--accent: #abcdef; --brand: #123456"`) {
		t.Fatalf("expected sorted CSS variables:\n%s", out)
	}
}
