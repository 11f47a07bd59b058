package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/internal/http"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// GetDocument implements couch.Client.GetDocument. A missing document is
// returned as a 404 *couch.RemoteError.
func (c *Client) GetDocument(ctx context.Context, database, id string) (couch.Document, error) {
	err := validateDocument(database, id)
	if err != nil {
		return nil, err
	}

	document, err := c.getDocument(ctx, database, id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return document, nil
}

func (c *Client) getDocument(ctx context.Context, database, id string) (couch.Document, error) {
	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodGet,
		Path:   documentPath(database, id),
	})
	if err != nil {
		return nil, err
	}

	document := couch.Document{}

	err = decode(raw, &document)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return document, nil
}

// DeleteDocument implements couch.Client.DeleteDocument. It looks up the
// current revision and deletes it. Unless opts.Strict is set, a missing
// document is not an error and false is returned.
func (c *Client) DeleteDocument(ctx context.Context, database, id string, opts *couch.DeleteOptions) (bool, error) {
	err := validateDocument(database, id)
	if err != nil {
		return false, err
	}

	if opts == nil {
		opts = &couch.DeleteOptions{}
	}

	found := c.fetchDocument(ctx, database, id)

	switch found.kind {
	case fetchFailed:
		return false, fmt.Errorf("deleting document: %w", found.err)
	case fetchNotFound:
		if opts.Strict {
			return false, fmt.Errorf("deleting document: %w", found.err)
		}

		return false, nil
	case fetchFound:
	}

	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodDelete,
		Path:   documentPath(database, id),
		Query:  url.Values{"rev": []string{found.document.Rev()}},
	})
	if err != nil {
		// Deleted by someone else between the lookup and the delete.
		if couch.IsNotFound(err) && !opts.Strict {
			return false, nil
		}

		return false, fmt.Errorf("deleting document: %w", err)
	}

	var result couch.DocumentResult

	err = decode(raw, &result)
	if err != nil {
		return false, fmt.Errorf("parsing delete response: %w", err)
	}

	c.notify(ctx, couch.MutationEvent{
		Operation:  constants.OperationDelete,
		Database:   database,
		DocumentID: id,
		Rev:        result.Rev,
	})

	return true, nil
}

// PutDocument implements couch.Client.PutDocument. By default the stored
// revision is copied into the outgoing document so the write replaces
// whatever is there. The caller's document is not modified.
func (c *Client) PutDocument(ctx context.Context, database, id string, document couch.Document, opts *couch.PutOptions) (*couch.DocumentResult, error) {
	err := validateDocument(database, id)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &couch.PutOptions{}
	}

	outgoing := document.Clone()

	if !opts.NoOverwrite && !opts.Strict {
		found := c.fetchDocument(ctx, database, id)

		switch found.kind {
		case fetchFound:
			outgoing[constants.FieldRev] = found.document.Rev()
		case fetchFailed:
			return nil, fmt.Errorf("putting document: %w", found.err)
		case fetchNotFound:
		}
	}

	result, err := c.writeDocument(ctx, database, id, outgoing)
	if err != nil {
		return nil, fmt.Errorf("putting document: %w", err)
	}

	c.notify(ctx, couch.MutationEvent{
		Operation:  constants.OperationPut,
		Database:   database,
		DocumentID: id,
		Rev:        result.Rev,
	})

	return result, nil
}

// PatchDocument implements couch.Client.PatchDocument. The diff is merged
// over the stored document, diff keys winning, and the result is written
// with the stored revision. Unless opts.Strict is set a missing document is
// treated as empty.
func (c *Client) PatchDocument(ctx context.Context, database, id string, diff couch.Document, opts *couch.PatchOptions) (*couch.DocumentResult, error) {
	err := validateDocument(database, id)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &couch.PatchOptions{}
	}

	current := couch.Document{}
	found := c.fetchDocument(ctx, database, id)

	switch found.kind {
	case fetchFound:
		current = found.document
	case fetchNotFound:
		if opts.Strict {
			return nil, fmt.Errorf("patching document: %w", found.err)
		}
	case fetchFailed:
		return nil, fmt.Errorf("patching document: %w", found.err)
	}

	result, err := c.writeDocument(ctx, database, id, current.Merge(diff))
	if err != nil {
		return nil, fmt.Errorf("patching document: %w", err)
	}

	c.notify(ctx, couch.MutationEvent{
		Operation:  constants.OperationPatch,
		Database:   database,
		DocumentID: id,
		Rev:        result.Rev,
	})

	return result, nil
}

func (c *Client) writeDocument(ctx context.Context, database, id string, document couch.Document) (*couch.DocumentResult, error) {
	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodPut,
		Path:   documentPath(database, id),
		Body:   document,
	})
	if err != nil {
		return nil, err
	}

	var result couch.DocumentResult

	err = decode(raw, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing write response: %w", err)
	}

	return &result, nil
}
