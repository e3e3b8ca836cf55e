package catalog

import (
	"context"
	"errors"
	"fmt"
)

// CloudPlatformScope is the OAuth scope requested for catalog access.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

var (
	// ErrNoTokenProvider is returned when a Client has no TokenProvider.
	ErrNoTokenProvider = errors.New("catalog: token provider not configured")
	// ErrNoFetcher is returned when a Client has no Fetcher.
	ErrNoFetcher = errors.New("catalog: fetcher not configured")
)

// TokenProvider yields OAuth access tokens for a scope. Implementations may hit
// the network on every call.
type TokenProvider interface {
	AccessToken(ctx context.Context, scope string) (string, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context, scope string) (string, error)

func (fn TokenProviderFunc) AccessToken(ctx context.Context, scope string) (string, error) {
	return fn(ctx, scope)
}

// Fetcher lists templates from the catalog using a bearer token.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (TemplateList, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, token string) (TemplateList, error)

func (fn FetcherFunc) Fetch(ctx context.Context, token string) (TemplateList, error) {
	return fn(ctx, token)
}

// Client wraps the two calls the selector needs. It keeps no state between
// calls; reusing a token across calls is up to the caller.
type Client struct {
	tokens  TokenProvider
	fetcher Fetcher
	scope   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithScope overrides the OAuth scope requested from the token provider.
func WithScope(scope string) ClientOption {
	return func(c *Client) {
		if scope != "" {
			c.scope = scope
		}
	}
}

// NewClient builds a Client from a token provider and a fetcher.
func NewClient(tokens TokenProvider, fetcher Fetcher, opts ...ClientOption) *Client {
	client := &Client{
		tokens:  tokens,
		fetcher: fetcher,
		scope:   CloudPlatformScope,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client
}

// Scope reports the OAuth scope the client requests.
func (c *Client) Scope() string {
	if c == nil {
		return CloudPlatformScope
	}
	return c.scope
}

// GetAccessToken asks the token provider for a fresh token.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	if c == nil || c.tokens == nil {
		return "", ErrNoTokenProvider
	}
	return c.tokens.AccessToken(ctx, c.scope)
}

// GetTemplates lists catalog templates. There is a single attempt; errors
// surface unchanged.
func (c *Client) GetTemplates(ctx context.Context, token string) (TemplateList, error) {
	if c == nil || c.fetcher == nil {
		return TemplateList{}, ErrNoFetcher
	}
	if err := ctx.Err(); err != nil {
		return TemplateList{}, err
	}
	list, err := c.fetcher.Fetch(ctx, token)
	if err != nil {
		return TemplateList{}, err
	}
	if list.Templates == nil {
		list.Templates = []Template{}
	}
	return list, nil
}

// StatusError reports a non-2xx catalog response. Its message is the status
// text returned by the service.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("catalog: unexpected status %d", e.Code)
}

// StatusCode returns the HTTP status of the failed response.
func (e *StatusError) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Code
}
