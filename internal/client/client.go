package client

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
	"github.com/fivetwenty-io/couchbeans/internal/http"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// ErrTransportRequired is returned by NewWithTransport for a nil transport.
var ErrTransportRequired = errors.New("transport is required")

// Client implements the couch.Client interface.
type Client struct {
	executor *Executor
	baseURL  string
	logger   couch.Logger
	notifier couch.Notifier
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *couch.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Username != "" || config.Password != "" {
		httpOpts = append(httpOpts, http.WithBasicAuth(config.Username, config.Password))
	}

	return httpOpts
}

// createSettings applies defaults to the request settings in config.
func createSettings(config *couch.Config) (couch.Settings, error) {
	if config.MaxRetries < 0 {
		return couch.Settings{}, couch.ErrInvalidMaxRetries
	}

	if config.Timeout < 0 {
		return couch.Settings{}, couch.ErrInvalidTimeout
	}

	settings := couch.Settings{
		MaxRetries: constants.DefaultMaxRetries,
		Timeout:    constants.DefaultTimeout,
		Verbose:    config.Verbose,
	}

	if config.MaxRetries > 0 {
		settings.MaxRetries = config.MaxRetries
	}

	if config.Timeout > 0 {
		settings.Timeout = config.Timeout
	}

	return settings, nil
}

// New creates a new CouchDB client.
func New(config *couch.Config) (*Client, error) {
	if config == nil {
		return nil, couch.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, couch.ErrURLRequired
	}

	transport := http.NewClient(config.URL, createHTTPClientOptions(config)...)

	return NewWithTransport(config, transport)
}

// NewWithTransport creates a client that sends every attempt through transport.
func NewWithTransport(config *couch.Config, transport http.Doer) (*Client, error) {
	if config == nil {
		return nil, couch.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, couch.ErrURLRequired
	}

	if transport == nil {
		return nil, ErrTransportRequired
	}

	settings, err := createSettings(config)
	if err != nil {
		return nil, err
	}

	var logger couch.Logger = nopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	return &Client{
		executor: NewExecutor(transport, settings, logger),
		baseURL:  strings.TrimSuffix(config.URL, "/"),
		logger:   logger,
		notifier: config.Notifier,
	}, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetVerbose implements couch.Client.SetVerbose.
func (c *Client) SetVerbose(verbose bool) {
	c.executor.SetVerbose(verbose)
}

// SetTimeout implements couch.Client.SetTimeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.executor.SetTimeout(timeout)
}

// SetMaxRetries implements couch.Client.SetMaxRetries.
func (c *Client) SetMaxRetries(maxRetries int) {
	c.executor.SetMaxRetries(maxRetries)
}

// Settings implements couch.Client.Settings.
func (c *Client) Settings() couch.Settings {
	return c.executor.Settings()
}

// notify reports a mutation to the configured notifier. Failures are logged.
func (c *Client) notify(ctx context.Context, event couch.MutationEvent) {
	if c.notifier == nil {
		return
	}

	event.Timestamp = time.Now().UTC()

	err := c.notifier.Notify(ctx, event)
	if err != nil {
		c.logger.Warn("Mutation notification failed", map[string]interface{}{
			"operation": event.Operation,
			"database":  event.Database,
			"id":        event.DocumentID,
			"error":     err.Error(),
		})
	}
}

func databasePath(database string) string {
	return "/" + url.PathEscape(database)
}

func documentPath(database, id string) string {
	return databasePath(database) + "/" + url.PathEscape(id)
}

func validateDatabase(database string) error {
	if database == "" {
		return couch.ErrDatabaseRequired
	}

	return nil
}

func validateDocument(database, id string) error {
	err := validateDatabase(database)
	if err != nil {
		return err
	}

	if id == "" {
		return couch.ErrDocumentIDRequired
	}

	return nil
}

var _ couch.Client = (*Client)(nil)
