package catalog

import (
	"context"
	"embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/sample_templates.yaml
var sampleFS embed.FS

const samplePath = "data/sample_templates.yaml"

// DefaultSimulatedDelay mirrors the latency of the catalog placeholder.
const DefaultSimulatedDelay = 2 * time.Second

var (
	sampleOnce sync.Once
	sampleList TemplateList
	sampleErr  error
)

// SampleTemplates returns a copy of the embedded sample catalog.
func SampleTemplates() (TemplateList, error) {
	sampleOnce.Do(func() {
		raw, err := sampleFS.ReadFile(samplePath)
		if err != nil {
			sampleErr = err
			return
		}
		sampleList, sampleErr = DecodeYAML(raw)
	})
	if sampleErr != nil {
		return TemplateList{}, sampleErr
	}
	return sampleList.Clone(), nil
}

// DecodeYAML parses a catalog listing written as YAML.
func DecodeYAML(raw []byte) (TemplateList, error) {
	var list TemplateList
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return TemplateList{}, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return list, nil
}

// StaticFetcher serves a fixed catalog after an artificial delay. It stands in
// for the catalog service and ignores the token.
type StaticFetcher struct {
	list  TemplateList
	delay time.Duration
	err   error
}

// StaticOption configures a StaticFetcher.
type StaticOption func(*StaticFetcher)

// WithDelay sets the artificial latency. Zero disables it.
func WithDelay(delay time.Duration) StaticOption {
	return func(f *StaticFetcher) {
		if delay < 0 {
			delay = 0
		}
		f.delay = delay
	}
}

// WithTemplates replaces the served catalog.
func WithTemplates(list TemplateList) StaticOption {
	return func(f *StaticFetcher) {
		f.list = list.Clone()
	}
}

// WithFailure makes every fetch fail with err after the delay.
func WithFailure(err error) StaticOption {
	return func(f *StaticFetcher) {
		f.err = err
	}
}

// NewStaticFetcher builds a fetcher serving the sample catalog by default.
func NewStaticFetcher(opts ...StaticOption) (*StaticFetcher, error) {
	list, err := SampleTemplates()
	if err != nil {
		return nil, err
	}
	fetcher := &StaticFetcher{list: list, delay: DefaultSimulatedDelay}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(fetcher)
	}
	return fetcher, nil
}

// Fetch waits for the configured delay, then returns the catalog.
func (f *StaticFetcher) Fetch(ctx context.Context, _ string) (TemplateList, error) {
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return TemplateList{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return TemplateList{}, err
	}
	if f.err != nil {
		return TemplateList{}, f.err
	}
	return f.list.Clone(), nil
}
