package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Query executor defaults.
const (
	// DefaultMaxRetries is the number of attempts made before giving up on
	// an unreachable server.
	DefaultMaxRetries = 3

	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 3000 * time.Millisecond

	// DiscoveryTimeout bounds the welcome request made by couchclient.Connect.
	DiscoveryTimeout = 10 * time.Second
)

// HTTP status codes the document operations branch on.
const (
	// HTTPStatusNotFound is returned for a missing database or document.
	HTTPStatusNotFound = 404

	// HTTPStatusConflict is returned when a write carries a stale revision.
	HTTPStatusConflict = 409

	// HTTPStatusPreconditionFailed is returned when creating a database that exists.
	HTTPStatusPreconditionFailed = 412
)

// Mango query defaults.
const (
	// DefaultPageSize is the page size used by Find when none is given.
	DefaultPageSize = 20
)

// Document fields managed by the server.
const (
	// FieldID is the document identifier.
	FieldID = "_id"

	// FieldRev is the document revision token.
	FieldRev = "_rev"
)

// Endpoint path segments.
const (
	// PathFind is the Mango query endpoint of a database.
	PathFind = "_find"

	// PathAllDocs is the all-documents view of a database.
	PathAllDocs = "_all_docs"
)

// Mutation operation names.
const (
	// OperationCreateDatabase is emitted after a database is created.
	OperationCreateDatabase = "create_db"

	// OperationDeleteDatabase is emitted after a database is deleted.
	OperationDeleteDatabase = "delete_db"

	// OperationPut is emitted after a document is written.
	OperationPut = "put"

	// OperationPatch is emitted after a document is merged and written.
	OperationPatch = "patch"

	// OperationDelete is emitted after a document is deleted.
	OperationDelete = "delete"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// FormatText for plain text log output.
	FormatText = "text"
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// StringTruncationLength is the default length for truncating cell values.
	StringTruncationLength = 60
)

// Notification defaults.
const (
	// DefaultNATSSubject prefixes every mutation subject.
	DefaultNATSSubject = "couch.mutations"

	// NATSClientName identifies the CLI connection on the NATS server.
	NATSClientName = "couch-cli"
)
