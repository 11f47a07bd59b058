// Package couchclient provides the main entry point for creating CouchDB clients
package couchclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/couchbeans/internal/client"
	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// New creates a new CouchDB client. No request is made.
func New(config *couch.Config) (couch.Client, error) {
	if config == nil {
		return nil, couch.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, couch.ErrURLRequired
	}

	normalized := *config
	normalized.URL = normalizeURL(config.URL)

	cli, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// Connect creates a client and checks that the server answers its welcome
// document before returning it.
func Connect(ctx context.Context, config *couch.Config) (couch.Client, *couch.ServerInfo, error) {
	cli, err := New(config)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.DiscoveryTimeout)
	defer cancel()

	info, err := cli.ServerInfo(pingCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to %s: %w", normalizeURL(config.URL), err)
	}

	return cli, info, nil
}

// normalizeURL trims a trailing slash and defaults the scheme to http.
func normalizeURL(raw string) string {
	normalized := strings.TrimSuffix(raw, "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "http://" + normalized
	}

	return normalized
}

// NewWithURL creates a new client with just a server address (no auth).
func NewWithURL(url string) (couch.Client, error) {
	return New(&couch.Config{
		URL: url,
	})
}

// NewWithBasicAuth creates a new client using HTTP basic authentication.
func NewWithBasicAuth(url, username, password string) (couch.Client, error) {
	return New(&couch.Config{
		URL:      url,
		Username: username,
		Password: password,
	})
}
