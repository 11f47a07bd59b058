package client

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/couchbeans/internal/http"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// ServerInfo implements couch.Client.ServerInfo.
func (c *Client) ServerInfo(ctx context.Context) (*couch.ServerInfo, error) {
	raw, err := c.executor.Execute(ctx, &http.Request{Method: nethttp.MethodGet, Path: "/"})
	if err != nil {
		return nil, fmt.Errorf("getting server info: %w", err)
	}

	var info couch.ServerInfo

	err = decode(raw, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing server info: %w", err)
	}

	return &info, nil
}

// ServerVersion implements couch.Client.ServerVersion. It returns "" when
// the server does not report a version.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return "", err
	}

	return info.Version, nil
}
