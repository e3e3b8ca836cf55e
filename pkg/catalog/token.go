package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
)

// ErrEmptyToken is returned by token providers that produced no credential.
var ErrEmptyToken = errors.New("catalog: empty access token")

// GoogleTokenProvider resolves tokens through Application Default Credentials.
type GoogleTokenProvider struct{}

// AccessToken fetches a fresh token for scope from the default credentials.
func (GoogleTokenProvider) AccessToken(ctx context.Context, scope string) (string, error) {
	source, err := google.DefaultTokenSource(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("catalog: default credentials: %w", err)
	}
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("catalog: fetch token: %w", err)
	}
	if token.AccessToken == "" {
		return "", ErrEmptyToken
	}
	return token.AccessToken, nil
}

// StaticTokenProvider always returns the same token.
type StaticTokenProvider string

func (p StaticTokenProvider) AccessToken(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p == "" {
		return "", ErrEmptyToken
	}
	return string(p), nil
}
