package adcselector

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
	"github.com/goliatone/go-adc-selector/pkg/secrets"
)

var (
	// ErrSuperseded is returned by a load whose result was discarded because a
	// newer load started or the field was unmounted.
	ErrSuperseded = errors.New("adcselector: load superseded")
	// ErrNotMounted is returned by Retry on an unmounted field.
	ErrNotMounted = errors.New("adcselector: field not mounted")
	// ErrSelectionRequired is reported by Validate when a selection is required.
	ErrSelectionRequired = errors.New("a template must be selected")
)

// TemplateClient is what the field needs from the catalog. *catalog.Client
// satisfies it.
type TemplateClient interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetTemplates(ctx context.Context, token string) (catalog.TemplateList, error)
}

// Props mirrors what the host form passes to a field.
type Props struct {
	OnChange  func(value string)
	Required  bool
	RawErrors []string
	FormData  string
}

type loadRun struct {
	gen  uint64
	done chan struct{}
	err  error
}

// Field is one mounted template selector. It is safe for concurrent use.
type Field struct {
	client TemplateClient
	store  secrets.Store
	opts   Options
	tokens *singleflight.Group

	mu        sync.Mutex
	props     Props
	state     State
	templates []catalog.Template
	loaded    bool
	err       error
	gen       uint64
	cancel    context.CancelFunc
	current   *loadRun
	mounted   bool
	mountCtx  context.Context
}

// FieldOption configures a Field beyond the shared Options.
type FieldOption func(*Field)

// WithTokenGroup shares token acquisition with other fields using the same
// group, so sibling fields on one session trigger a single provider call.
func WithTokenGroup(group *singleflight.Group) FieldOption {
	return func(f *Field) {
		if group != nil {
			f.tokens = group
		}
	}
}

// NewField builds an unmounted field.
func NewField(client TemplateClient, store secrets.Store, props Props, opts Options, fieldOpts ...FieldOption) *Field {
	if store == nil {
		store = secrets.NewMemoryStore(nil)
	}
	f := &Field{
		client: client,
		store:  store,
		opts:   NewOptions(func(o *Options) { *o = opts }),
		tokens: &singleflight.Group{},
		props:  props,
		state:  StateInitial,
	}
	for _, opt := range fieldOpts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Mount starts the load cycle in the background. ctx bounds the lifetime of
// the mount; Unmount cancels it.
func (f *Field) Mount(ctx context.Context) {
	f.mu.Lock()
	if f.mounted {
		f.mu.Unlock()
		return
	}
	f.mounted = true
	f.mountCtx = ctx
	f.mu.Unlock()

	f.opts.Logger.Debug("adcselector: mount", "field", f.opts.FieldName)
	f.start(ctx)
}

// Unmount cancels any pending load. Results that arrive afterwards are dropped.
func (f *Field) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return
	}
	f.mounted = false
	f.mountCtx = nil
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Mounted reports whether the field is mounted.
func (f *Field) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

// Load runs one token-then-templates cycle synchronously and returns its
// error unchanged. Starting a load supersedes any load in flight.
func (f *Field) Load(ctx context.Context) error {
	run, loadCtx := f.begin(ctx)
	return f.run(loadCtx, run)
}

// Wait blocks until the most recent load finishes and returns its error.
func (f *Field) Wait(ctx context.Context) error {
	f.mu.Lock()
	run := f.current
	f.mu.Unlock()
	if run == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-run.done:
		return run.err
	}
}

// Retry restarts the load cycle of a mounted field.
func (f *Field) Retry(ctx context.Context) error {
	f.mu.Lock()
	mounted := f.mounted
	f.mu.Unlock()
	if !mounted {
		return ErrNotMounted
	}
	f.opts.Logger.Info("adcselector: retry", "field", f.opts.FieldName)
	f.start(ctx)
	return nil
}

// SetFormData records the host form's committed value. A change on a mounted
// field whose token is already known restarts the template fetch.
func (f *Field) SetFormData(value string) {
	f.mu.Lock()
	changed := f.props.FormData != value
	f.props.FormData = value
	ctx := f.mountCtx
	mounted := f.mounted
	f.mu.Unlock()

	if !changed || !mounted {
		return
	}
	if _, ok := f.store.Get(secrets.GoogleOAuthToken); !ok {
		return
	}
	f.start(ctx)
}

// SetRawErrors replaces the validation errors reported by the host form.
func (f *Field) SetRawErrors(errs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props.RawErrors = append([]string(nil), errs...)
}

// Select reports a card click to the host form. The field does not change its
// own FormData; the host is expected to call SetFormData.
func (f *Field) Select(id string) {
	f.mu.Lock()
	onChange := f.props.OnChange
	f.mu.Unlock()

	f.opts.Logger.Debug("adcselector: select", "field", f.opts.FieldName, "template", id)
	if onChange != nil {
		onChange(id)
	}
}

// Validate runs the field validator. It accepts any value unless the field was
// configured with WithRequireSelection.
func (f *Field) Validate(value string) []string {
	return validate(f.opts, value)
}

func validate(opts Options, value string) []string {
	if opts.RequireSelection && strings.TrimSpace(value) == "" {
		return []string{ErrSelectionRequired.Error()}
	}
	return nil
}

// State returns the current load state.
func (f *Field) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Loading reports whether no template list has been received yet.
func (f *Field) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loaded
}

// Err returns the error of the last failed load, if the field is failed.
func (f *Field) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Templates returns a copy of the received templates.
func (f *Field) Templates() []catalog.Template {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog.TemplateList{Templates: f.templates}.Clone().Templates
}

// View snapshots the field for rendering.
func (f *Field) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	view := View{
		FieldName: f.opts.FieldName,
		State:     f.state,
		Loading:   !f.loaded,
		Failed:    f.state == StateFailed,
		Selected:  f.props.FormData,
		Required:  f.props.Required,
		HasError:  len(f.props.RawErrors) > 0 && f.props.FormData == "",
	}
	if f.err != nil {
		view.Error = f.err.Error()
	}
	if view.Loading {
		view.Placeholders = f.opts.PlaceholderCount
		view.Cards = []Card{}
		return view
	}
	view.Cards = BuildCards(f.templates, f.props.FormData)
	return view
}

// retryContext is the mount context, or Background for a field loaded
// without Mount.
func (f *Field) retryContext() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mountCtx != nil {
		return f.mountCtx
	}
	return context.Background()
}

func (f *Field) start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	run, loadCtx := f.begin(ctx)
	go func() {
		_ = f.run(loadCtx, run)
	}()
}

func (f *Field) begin(ctx context.Context) (*loadRun, context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	loadCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	run := &loadRun{gen: f.gen, done: make(chan struct{})}
	f.current = run
	return run, loadCtx
}

func (f *Field) run(ctx context.Context, run *loadRun) (err error) {
	defer func() {
		run.err = err
		close(run.done)
	}()

	token, ok := f.store.Get(secrets.GoogleOAuthToken)
	if !ok {
		if !f.transition(run.gen, StateAwaitingToken) {
			return ErrSuperseded
		}
		token, err = f.acquireToken(ctx)
		if err != nil {
			f.fail(run.gen, "token", err)
			return err
		}
	}

	if !f.transition(run.gen, StateAwaitingTemplates) {
		return ErrSuperseded
	}
	list, err := f.client.GetTemplates(ctx, token)
	if err != nil {
		f.fail(run.gen, "templates", err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if run.gen != f.gen {
		return ErrSuperseded
	}
	f.templates = list.Clone().Templates
	f.loaded = true
	f.err = nil
	f.state = StateReady
	f.opts.Logger.Debug("adcselector: templates loaded", "field", f.opts.FieldName, "count", len(f.templates))
	return nil
}

// acquireToken fetches a token once per group and shares it through the store.
// The shared call outlives any single caller: each field stops waiting when its
// own ctx ends, but an unmounting sibling never cancels the fetch for the rest.
func (f *Field) acquireToken(ctx context.Context) (string, error) {
	shared := context.WithoutCancel(ctx)
	ch := f.tokens.DoChan(secrets.GoogleOAuthToken, func() (any, error) {
		if token, ok := f.store.Get(secrets.GoogleOAuthToken); ok {
			return token, nil
		}
		token, err := f.client.GetAccessToken(shared)
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", catalog.ErrEmptyToken
		}
		f.store.Set(secrets.GoogleOAuthToken, token)
		f.opts.Logger.Debug("adcselector: token stored", "field", f.opts.FieldName)
		return token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (f *Field) transition(gen uint64, state State) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return false
	}
	f.state = state
	return true
}

func (f *Field) fail(gen uint64, stage string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	f.state = StateFailed
	f.err = err
	f.opts.Logger.Error("adcselector: load failed", "field", f.opts.FieldName, "stage", stage, "err", err)
}
