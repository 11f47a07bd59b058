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

// Find implements couch.Client.Find. It returns one page of the documents
// matching selector.
func (c *Client) Find(ctx context.Context, database string, selector couch.Selector, opts *couch.FindOptions) ([]couch.Document, error) {
	err := validateDatabase(database)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &couch.FindOptions{}
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = constants.DefaultPageSize
	}

	query := buildMangoQuery(selector, opts)
	query.Skip = opts.Page * pageSize
	query.Limit = pageSize

	docs, err := c.find(ctx, database, query)
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}

	return docs, nil
}

// FindAll implements couch.Client.FindAll. It reads the row count of the
// database and then asks for that many matches in one query.
//
// The two requests are not atomic: documents written between them can be
// missed. Page and PageSize in opts are ignored.
func (c *Client) FindAll(ctx context.Context, database string, selector couch.Selector, opts *couch.FindOptions) ([]couch.Document, error) {
	err := validateDatabase(database)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &couch.FindOptions{}
	}

	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodGet,
		Path:   databasePath(database) + "/" + constants.PathAllDocs,
		Query:  url.Values{"limit": []string{"0"}},
	})
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	var allDocs couch.AllDocsResponse

	err = decode(raw, &allDocs)
	if err != nil {
		return nil, fmt.Errorf("parsing all docs response: %w", err)
	}

	query := buildMangoQuery(selector, opts)
	query.Limit = allDocs.TotalRows

	docs, err := c.find(ctx, database, query)
	if err != nil {
		return nil, fmt.Errorf("finding all documents: %w", err)
	}

	return docs, nil
}

func (c *Client) find(ctx context.Context, database string, query couch.MangoQuery) ([]couch.Document, error) {
	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodPost,
		Path:   databasePath(database) + "/" + constants.PathFind,
		Body:   query,
	})
	if err != nil {
		return nil, err
	}

	var resp couch.FindResponse

	err = decode(raw, &resp)
	if err != nil {
		return nil, fmt.Errorf("parsing find response: %w", err)
	}

	if resp.Docs == nil {
		return []couch.Document{}, nil
	}

	return resp.Docs, nil
}

// buildMangoQuery copies selector and adds an "$exists" predicate for each
// sort field it does not constrain; CouchDB rejects sorts on other fields.
func buildMangoQuery(selector couch.Selector, opts *couch.FindOptions) couch.MangoQuery {
	augmented := selector.Clone()

	for _, field := range opts.Sort.Fields() {
		if _, ok := augmented[field]; !ok {
			augmented[field] = map[string]interface{}{"$exists": true}
		}
	}

	return couch.MangoQuery{
		Selector: augmented,
		Sort:     opts.Sort,
		Fields:   opts.Fields,
	}
}
