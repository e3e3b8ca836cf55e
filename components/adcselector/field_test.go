package adcselector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

func TestBuildCards_HighlightsExactlyTheMatchingCard(t *testing.T) {
	templates := threeTemplates()
	for _, tpl := range templates {
		cards := BuildCards(templates, tpl.ID)
		view := View{Cards: cards}
		if view.SelectedCount() != 1 {
			t.Fatalf("selected %q: expected one highlighted card, got %d", tpl.ID, view.SelectedCount())
		}
		for _, card := range cards {
			if card.Selected != (card.ID == tpl.ID) {
				t.Fatalf("selected %q: card %q has Selected=%v", tpl.ID, card.ID, card.Selected)
			}
		}
	}

	if got := (View{Cards: BuildCards(templates, "missing")}).SelectedCount(); got != 0 {
		t.Fatalf("expected no highlight for unknown value, got %d", got)
	}
	if got := (View{Cards: BuildCards(templates, "")}).SelectedCount(); got != 0 {
		t.Fatalf("expected no highlight for empty value, got %d", got)
	}
}

func TestBuildCards_DuplicateIDsHighlightOnce(t *testing.T) {
	templates := []catalog.Template{{ID: "dup"}, {ID: "dup"}}
	if got := (View{Cards: BuildCards(templates, "dup")}).SelectedCount(); got != 1 {
		t.Fatalf("expected a single highlight, got %d", got)
	}
}

func TestField_LoadingToReady(t *testing.T) {
	for _, n := range []int{0, 1, 3, 12} {
		templates := make([]catalog.Template, 0, n)
		for i := 0; i < n; i++ {
			templates = append(templates, catalog.Template{ID: string(rune('a' + i)), Name: "T"})
		}
		client := newFakeClient(templates...)
		client.listGate = make(chan struct{})

		field := NewField(client, nil, Props{}, NewOptions())
		ctx := testContext(t)
		field.Mount(ctx)
		waitForState(t, field, StateAwaitingTemplates)

		view := field.View()
		if !view.Loading || view.Placeholders != 9 || len(view.Cards) != 0 {
			t.Fatalf("n=%d: unexpected loading view: %+v", n, view)
		}

		close(client.listGate)
		if err := field.Wait(ctx); err != nil {
			t.Fatalf("n=%d: wait: %v", n, err)
		}

		view = field.View()
		if view.Loading || view.Placeholders != 0 || len(view.Cards) != n {
			t.Fatalf("n=%d: unexpected ready view: loading=%v placeholders=%d cards=%d", n, view.Loading, view.Placeholders, len(view.Cards))
		}
		if field.State() != StateReady {
			t.Fatalf("n=%d: unexpected state %q", n, field.State())
		}
		field.Unmount()
	}
}

func TestField_TokenPrecedesTemplates(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	store := secrets.NewMemoryStore(nil)
	field := NewField(client, store, Props{}, NewOptions())

	if err := field.Load(testContext(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"token", "templates:tok"}, client.Calls()); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	if token, ok := store.Get(secrets.GoogleOAuthToken); !ok || token != "tok" {
		t.Fatalf("expected token to be shared through the store, got %q", token)
	}
}

func TestField_ReusesStoredToken(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	store := secrets.NewMemoryStore(map[string]string{secrets.GoogleOAuthToken: "cached"})
	field := NewField(client, store, Props{}, NewOptions())

	if err := field.Load(testContext(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"templates:cached"}, client.Calls()); diff != "" {
		t.Fatalf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestField_EmptyTokenNeverFetchesTemplates(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.token = ""
	field := NewField(client, nil, Props{}, NewOptions())

	err := field.Load(testContext(t))
	if !errors.Is(err, catalog.ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if client.count("templates") != 0 {
		t.Fatalf("template fetch started without a token: %v", client.Calls())
	}
	if field.State() != StateFailed {
		t.Fatalf("unexpected state %q", field.State())
	}
}

func TestField_SelectInvokesOnChangeOnce(t *testing.T) {
	var got []string
	client := newFakeClient(threeTemplates()...)
	client.listGate = make(chan struct{})
	field := NewField(client, nil, Props{
		FormData: "a",
		OnChange: func(value string) { got = append(got, value) },
	}, NewOptions())

	// While still loading.
	field.Select("b")
	if diff := cmp.Diff([]string{"b"}, got); diff != "" {
		t.Fatalf("onChange mismatch (-want +got):\n%s", diff)
	}

	close(client.listGate)
	if err := field.Load(testContext(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	// Clicking the already selected card still reports it.
	field.Select("a")
	if diff := cmp.Diff([]string{"b", "a"}, got); diff != "" {
		t.Fatalf("onChange mismatch (-want +got):\n%s", diff)
	}
	if field.View().Selected != "a" {
		t.Fatalf("select must not change the externally owned value")
	}
}

func TestField_TemplateFailurePropagates(t *testing.T) {
	unavailable := errors.New("Service Unavailable")
	client := newFakeClient(threeTemplates()...)
	client.listErr = unavailable
	field := NewField(client, nil, Props{}, NewOptions())

	ctx := testContext(t)
	field.Mount(ctx)
	defer field.Unmount()

	err := field.Wait(ctx)
	if err != unavailable {
		t.Fatalf("expected the same error value, got %v", err)
	}
	if !field.Loading() {
		t.Fatalf("loading flag must stay true after a failed fetch")
	}
	view := field.View()
	if !view.Failed || view.Error != "Service Unavailable" || view.State != StateFailed {
		t.Fatalf("expected a visible failed state, got %+v", view)
	}

	client.setListErr(nil)
	if err := field.Retry(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := field.Wait(ctx); err != nil {
		t.Fatalf("wait after retry: %v", err)
	}
	view = field.View()
	if view.Failed || view.Loading || len(view.Cards) != 3 || view.Error != "" {
		t.Fatalf("unexpected view after retry: %+v", view)
	}
}

func TestField_RetryRequiresMount(t *testing.T) {
	field := NewField(newFakeClient(), nil, Props{}, NewOptions())
	if err := field.Retry(context.Background()); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
}

func TestField_FormDataChangeRefetches(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	field := NewField(client, nil, Props{FormData: "a"}, NewOptions())
	ctx := testContext(t)
	field.Mount(ctx)
	defer field.Unmount()

	if err := field.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := client.count("templates"); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}

	field.SetFormData("a")
	if got := client.count("templates"); got != 1 {
		t.Fatalf("unchanged value must not refetch, got %d fetches", got)
	}

	field.SetFormData("b")
	if err := field.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := client.count("templates"); got != 2 {
		t.Fatalf("expected a refetch after the value changed, got %d fetches", got)
	}
	if got := client.count("token"); got != 1 {
		t.Fatalf("token must be reused across refetches, got %d token calls", got)
	}

	view := field.View()
	for _, card := range view.Cards {
		if card.Selected != (card.ID == "b") {
			t.Fatalf("card %q has Selected=%v", card.ID, card.Selected)
		}
	}
}

func TestField_UnmountDropsPendingResult(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.listGate = make(chan struct{})
	field := NewField(client, nil, Props{}, NewOptions())

	ctx := testContext(t)
	field.Mount(ctx)
	waitForState(t, field, StateAwaitingTemplates)
	field.Unmount()
	close(client.listGate)

	if err := field.Wait(ctx); err == nil {
		t.Fatalf("expected the pending load to end with an error")
	}
	if !field.Loading() || len(field.Templates()) != 0 {
		t.Fatalf("stale result was applied after unmount")
	}
	if field.State() != StateAwaitingTemplates {
		t.Fatalf("state changed after unmount: %q", field.State())
	}
}

func TestField_NewerLoadSupersedesOlder(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.listGate = make(chan struct{})
	store := secrets.NewMemoryStore(map[string]string{secrets.GoogleOAuthToken: "tok"})
	field := NewField(client, store, Props{}, NewOptions())

	ctx := testContext(t)
	errs := make(chan error, 1)
	go func() { errs <- field.Load(ctx) }()
	waitForState(t, field, StateAwaitingTemplates)

	close(client.listGate)
	if err := field.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected first load error: %v", err)
	}
	if field.State() != StateReady {
		t.Fatalf("unexpected state %q", field.State())
	}
}

func TestComponent_SiblingFieldsShareOneTokenCall(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.tokenGate = make(chan struct{})
	component, err := New(client, nil)
	if err != nil {
		t.Fatalf("new component: %v", err)
	}

	ctx := testContext(t)
	fields := []*Field{component.NewField(Props{}), component.NewField(Props{})}
	for _, field := range fields {
		field.Mount(ctx)
		waitForState(t, field, StateAwaitingToken)
	}
	close(client.tokenGate)

	var wg sync.WaitGroup
	for _, field := range fields {
		wg.Add(1)
		go func(field *Field) {
			defer wg.Done()
			if err := field.Wait(ctx); err != nil {
				t.Errorf("wait: %v", err)
			}
		}(field)
	}
	wg.Wait()

	if got := client.count("token"); got != 1 {
		t.Fatalf("expected a single token call, got %d (%v)", got, client.Calls())
	}
}

func TestComponent_UnmountingSiblingKeepsSharedTokenCall(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.tokenGate = make(chan struct{})
	component, err := New(client, nil)
	if err != nil {
		t.Fatalf("new component: %v", err)
	}

	ctx := testContext(t)
	first := component.NewField(Props{})
	second := component.NewField(Props{})
	first.Mount(ctx)
	waitForState(t, first, StateAwaitingToken)
	second.Mount(ctx)
	waitForState(t, second, StateAwaitingToken)

	first.Unmount()
	close(client.tokenGate)

	if err := second.Wait(ctx); err != nil {
		t.Fatalf("sibling load failed after unmount: %v", err)
	}
	if !second.Mounted() {
		t.Fatalf("expected sibling to stay mounted")
	}
	if got := second.State(); got != StateReady {
		t.Fatalf("expected sibling ready, got %v (err=%v)", got, second.Err())
	}
	if got := client.count("token"); got != 1 {
		t.Fatalf("expected a single token call, got %d (%v)", got, client.Calls())
	}
	if got := first.State(); got == StateFailed {
		t.Fatalf("unmounted field must not surface a failure")
	}
}

func TestField_UnmountStopsWaitingForToken(t *testing.T) {
	client := newFakeClient(threeTemplates()...)
	client.tokenGate = make(chan struct{})
	defer close(client.tokenGate)

	field := NewField(client, nil, Props{}, NewOptions())
	ctx := testContext(t)
	field.Mount(ctx)
	waitForState(t, field, StateAwaitingToken)

	field.Unmount()
	if err := field.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled while the token is pending, got %v", err)
	}
}

func TestField_Validate(t *testing.T) {
	permissive := NewField(nil, nil, Props{}, NewOptions())
	if errs := permissive.Validate(""); len(errs) != 0 {
		t.Fatalf("default validator must accept empty values, got %v", errs)
	}

	strict := NewField(nil, nil, Props{}, NewOptions(WithRequireSelection(true)))
	if diff := cmp.Diff([]string{"a template must be selected"}, strict.Validate("  ")); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
	if errs := strict.Validate("rag-vertexai"); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestField_HasErrorMirrorsHostErrors(t *testing.T) {
	field := NewField(nil, nil, Props{RawErrors: []string{"required"}, Required: true}, NewOptions())
	if view := field.View(); !view.HasError || !view.Required {
		t.Fatalf("expected error state without a value, got %+v", view)
	}
	field.SetFormData("a")
	if field.View().HasError {
		t.Fatalf("error state must clear once a value is present")
	}
	field.SetRawErrors(nil)
	field.SetFormData("")
	if field.View().HasError {
		t.Fatalf("error state requires raw errors")
	}
}

func TestField_SampleCatalogScenario(t *testing.T) {
	fetcher, err := catalog.NewStaticFetcher(catalog.WithDelay(200 * time.Millisecond))
	if err != nil {
		t.Fatalf("static fetcher: %v", err)
	}
	client := catalog.NewClient(catalog.StaticTokenProvider("tok"), fetcher)

	var got []string
	field := NewField(client, nil, Props{OnChange: func(v string) { got = append(got, v) }}, NewOptions())
	ctx := testContext(t)
	field.Mount(ctx)
	defer field.Unmount()

	if view := field.View(); view.Placeholders != 9 {
		t.Fatalf("expected 9 placeholders before the delay elapses, got %d", view.Placeholders)
	}
	if err := field.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}

	names := map[string]string{}
	for _, card := range field.View().Cards {
		names[card.Name] = card.ID
	}
	for _, title := range []string{"Cloud Run React SSR + Python", "Memorystore Redis database"} {
		if _, ok := names[title]; !ok {
			t.Fatalf("missing card %q", title)
		}
	}

	field.Select(names["Memorystore Redis database"])
	if diff := cmp.Diff([]string{"memorystore-redis"}, got); diff != "" {
		t.Fatalf("onChange mismatch (-want +got):\n%s", diff)
	}
}
