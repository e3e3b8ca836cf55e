package adcselector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
	"github.com/goliatone/go-adc-selector/pkg/testsupport"
)

type fakeClient struct {
	mu        sync.Mutex
	calls     []string
	token     string
	tokenErr  error
	list      catalog.TemplateList
	listErr   error
	tokenGate chan struct{}
	listGate  chan struct{}
}

func newFakeClient(templates ...catalog.Template) *fakeClient {
	return &fakeClient{
		token: "tok",
		list:  catalog.TemplateList{Templates: templates},
	}
}

func (c *fakeClient) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, "token")
	gate := c.tokenGate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-gate:
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.tokenErr
}

func (c *fakeClient) GetTemplates(ctx context.Context, token string) (catalog.TemplateList, error) {
	c.mu.Lock()
	c.calls = append(c.calls, "templates:"+token)
	gate := c.listGate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-ctx.Done():
			return catalog.TemplateList{}, ctx.Err()
		case <-gate:
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return catalog.TemplateList{}, c.listErr
	}
	return c.list.Clone(), nil
}

func (c *fakeClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) count(prefix string) int {
	n := 0
	for _, call := range c.Calls() {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (c *fakeClient) setListErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listErr = err
}

func threeTemplates() []catalog.Template {
	return []catalog.Template{
		{ID: "a", Name: "Alpha", Description: "first"},
		{ID: "b", Name: "Beta", Description: "second"},
		{ID: "c", Name: "Gamma", Description: "third"},
	}
}

func waitForState(t *testing.T, field *Field, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if field.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("field never reached state %q (last %q)", want, field.State())
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return testsupport.Context(t, 5*time.Second)
}
