package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
)

// LoadTemplates reads a YAML catalog fixture.
func LoadTemplates(t *testing.T, path string) catalog.TemplateList {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read catalog fixture: %v", err)
	}
	list, err := catalog.DecodeYAML(data)
	if err != nil {
		t.Fatalf("decode catalog fixture: %v", err)
	}
	return list
}

// Context returns a context cancelled when the test ends, bounded by timeout.
func Context(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
