package client

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/internal/http"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// CreateDatabase implements couch.Client.CreateDatabase. A database that
// already exists is reported as *couch.AlreadyExistsError.
func (c *Client) CreateDatabase(ctx context.Context, database string, opts *couch.CreateDatabaseOptions) error {
	err := validateDatabase(database)
	if err != nil {
		return err
	}

	if opts == nil {
		opts = &couch.CreateDatabaseOptions{}
	}

	// CouchDB reads q, n and partitioned from the query string; the same
	// options are also sent as the JSON body.
	options := map[string]interface{}{
		"partitioned": opts.Partitioned,
	}
	query := url.Values{}

	if opts.Partitioned {
		query.Set("partitioned", "true")
	}

	if opts.Shards != nil {
		options["q"] = *opts.Shards
		query.Set("q", strconv.Itoa(*opts.Shards))
	}

	if opts.Replicas != nil {
		options["n"] = *opts.Replicas
		query.Set("n", strconv.Itoa(*opts.Replicas))
	}

	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodPut,
		Path:   databasePath(database),
		Query:  query,
		Body:   options,
	})
	if err != nil {
		remoteErr := &couch.RemoteError{}
		if errors.As(err, &remoteErr) && remoteErr.StatusCode == constants.HTTPStatusPreconditionFailed {
			return &couch.AlreadyExistsError{Database: database, Err: remoteErr}
		}

		return fmt.Errorf("creating database: %w", err)
	}

	var result couch.OKResponse

	err = decode(raw, &result)
	if err != nil {
		return fmt.Errorf("parsing create database response: %w", err)
	}

	c.notify(ctx, couch.MutationEvent{Operation: constants.OperationCreateDatabase, Database: database})

	return nil
}

// DeleteDatabase implements couch.Client.DeleteDatabase.
func (c *Client) DeleteDatabase(ctx context.Context, database string) error {
	err := validateDatabase(database)
	if err != nil {
		return err
	}

	raw, err := c.executor.Execute(ctx, &http.Request{
		Method: nethttp.MethodDelete,
		Path:   databasePath(database),
	})
	if err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}

	var result couch.OKResponse

	err = decode(raw, &result)
	if err != nil {
		return fmt.Errorf("parsing delete database response: %w", err)
	}

	c.notify(ctx, couch.MutationEvent{Operation: constants.OperationDeleteDatabase, Database: database})

	return nil
}
