package client

import (
	"context"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// fetchKind classifies a document lookup.
type fetchKind int

const (
	fetchFound fetchKind = iota
	fetchNotFound
	fetchFailed
)

// fetchResult is the tagged outcome of fetchDocument. err is set for
// fetchNotFound and fetchFailed.
type fetchResult struct {
	kind     fetchKind
	document couch.Document
	err      error
}

// fetchDocument looks up a document and separates "missing" from every
// other failure so callers can decide whether a 404 is expected.
func (c *Client) fetchDocument(ctx context.Context, database, id string) fetchResult {
	document, err := c.getDocument(ctx, database, id)

	switch {
	case err == nil:
		return fetchResult{kind: fetchFound, document: document}
	case couch.IsNotFound(err):
		return fetchResult{kind: fetchNotFound, err: err}
	default:
		return fetchResult{kind: fetchFailed, err: err}
	}
}
