package couch

import (
	"context"
	"time"
)

// ServerClient reads information about the server itself.
type ServerClient interface {
	ServerInfo(ctx context.Context) (*ServerInfo, error)
	ServerVersion(ctx context.Context) (string, error)
}

// DatabasesClient creates and removes databases.
type DatabasesClient interface {
	CreateDatabase(ctx context.Context, database string, opts *CreateDatabaseOptions) error
	DeleteDatabase(ctx context.Context, database string) error
}

// DocumentsClient reads and writes single documents.
type DocumentsClient interface {
	GetDocument(ctx context.Context, database, id string) (Document, error)
	PutDocument(ctx context.Context, database, id string, document Document, opts *PutOptions) (*DocumentResult, error)
	PatchDocument(ctx context.Context, database, id string, diff Document, opts *PatchOptions) (*DocumentResult, error)
	DeleteDocument(ctx context.Context, database, id string, opts *DeleteOptions) (bool, error)
}

// QueryClient runs Mango queries.
type QueryClient interface {
	Find(ctx context.Context, database string, selector Selector, opts *FindOptions) ([]Document, error)
	FindAll(ctx context.Context, database string, selector Selector, opts *FindOptions) ([]Document, error)
}

// SettingsClient exposes the mutable request settings of a live client.
type SettingsClient interface {
	SetVerbose(verbose bool)
	SetTimeout(timeout time.Duration)
	SetMaxRetries(maxRetries int)
	Settings() Settings
}

// Client is the full CouchDB client surface.
type Client interface {
	ServerClient
	DatabasesClient
	DocumentsClient
	QueryClient
	SettingsClient
}

// Settings is the request configuration in effect for one call.
type Settings struct {
	// MaxRetries is the number of attempts made before giving up on an
	// unreachable server. Zero or less makes no attempt at all.
	MaxRetries int
	// Timeout bounds each attempt. Zero or less disables the bound.
	Timeout time.Duration
	// Verbose logs every refused or timed out attempt at debug level.
	Verbose bool
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a couch.Client.
//
// # Timeouts and retries
//
// Every operation is retried up to MaxRetries times when the server refuses
// the connection or an attempt exceeds Timeout. Retries are immediate, with
// no backoff. A response with any status outside [200, 300) ends the call
// at once with a *RemoteError. The context passed to each operation can
// cancel it at any point.
type Config struct {
	// URL is the server address, e.g. "http://localhost:5984".
	// couchclient.New trims a trailing slash and adds "http://" when no
	// scheme is present.
	URL string

	// Username and Password enable HTTP basic authentication.
	Username string
	Password string

	// MaxRetries: attempts per operation. If 0, DefaultMaxRetries (3) is used.
	MaxRetries int
	// Timeout: per-attempt bound. If 0, 3000ms is used.
	Timeout time.Duration
	// Verbose: log refused and timed out attempts.
	Verbose bool
	// Debug: log every HTTP request and response when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the executor and the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Notifier: optional sink for mutation events.
	Notifier Notifier
}
