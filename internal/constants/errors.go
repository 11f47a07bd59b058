package constants

import "errors"

// Configuration errors.
var (
	ErrNoURLConfigured   = errors.New("no CouchDB URL configured, use --url or COUCH_URL")
	ErrInvalidOutput     = errors.New("invalid output format")
	ErrInvalidLogFormat  = errors.New("invalid log format")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidDocument   = errors.New("document must be a JSON or YAML object")
	ErrNoDocumentData    = errors.New("no document data, use --data or --file")
	ErrBothDataAndFile   = errors.New("--data and --file are mutually exclusive")
	ErrInvalidSortFormat = errors.New("invalid sort format, expected field[:asc|desc]")
)

// File system errors.
var (
	ErrNotRegularFile             = errors.New("path is not a regular file")
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
)
