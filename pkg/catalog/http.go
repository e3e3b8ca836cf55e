package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is the ADC catalog service root.
const DefaultBaseURL = "https://api.applicationdesigncenter.gcloud/"

const maxResponseBytes = 4 << 20

// HTTPFetcher lists templates from the catalog service over HTTP.
type HTTPFetcher struct {
	baseURL  string
	client   *http.Client
	validate bool
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) HTTPOption {
	return func(f *HTTPFetcher) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			f.baseURL = trimmed
		}
	}
}

// WithHTTPClient overrides the HTTP client used for catalog requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithSchemaValidation toggles response validation against the embedded
// OpenAPI document. Enabled by default.
func WithSchemaValidation(enabled bool) HTTPOption {
	return func(f *HTTPFetcher) {
		f.validate = enabled
	}
}

// NewHTTPFetcher builds a fetcher for the catalog service.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	fetcher := &HTTPFetcher{
		baseURL:  DefaultBaseURL,
		client:   http.DefaultClient,
		validate: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(fetcher)
	}
	return fetcher
}

// Endpoint returns the absolute URL of the template listing.
func (f *HTTPFetcher) Endpoint() string {
	return strings.TrimRight(f.baseURL, "/") + templatesPath
}

// Fetch issues GET <base>/adctemplates with the token as bearer credential.
// Non-2xx responses become a *StatusError carrying the status text.
func (f *HTTPFetcher) Fetch(ctx context.Context, token string) (TemplateList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint(), nil)
	if err != nil {
		return TemplateList{}, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return TemplateList{}, fmt.Errorf("catalog: list templates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TemplateList{}, &StatusError{Code: resp.StatusCode, Status: statusText(resp)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return TemplateList{}, fmt.Errorf("catalog: read response: %w", err)
	}

	if f.validate {
		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return TemplateList{}, fmt.Errorf("catalog: decode response: %w", err)
		}
		if err := ValidatePayload(payload); err != nil {
			return TemplateList{}, err
		}
	}

	var list TemplateList
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&list); err != nil {
		return TemplateList{}, fmt.Errorf("catalog: decode response: %w", err)
	}
	return list, nil
}

// statusText strips the numeric prefix from resp.Status ("503 Service
// Unavailable" -> "Service Unavailable").
func statusText(resp *http.Response) string {
	status := strings.TrimSpace(resp.Status)
	if code, text, ok := strings.Cut(status, " "); ok && code == fmt.Sprint(resp.StatusCode) {
		status = strings.TrimSpace(text)
	}
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}
	return status
}
