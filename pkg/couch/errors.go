package couch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/couchbeans/internal/constants"
)

// ErrorBody is the JSON error document CouchDB returns with a rejection.
type ErrorBody struct {
	Error  string `json:"error"  yaml:"error"`
	Reason string `json:"reason" yaml:"reason"`
}

// RemoteError is returned when the server answers with a status outside [200, 300).
// It is never retried.
type RemoteError struct {
	StatusCode int
	Body       ErrorBody
	Raw        json.RawMessage
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	switch {
	case e.Body.Error != "" && e.Body.Reason != "":
		return fmt.Sprintf("%s: %s (status: %d)", e.Body.Error, e.Body.Reason, e.StatusCode)
	case e.Body.Error != "":
		return fmt.Sprintf("%s (status: %d)", e.Body.Error, e.StatusCode)
	case len(e.Raw) > 0:
		return fmt.Sprintf("%s (status: %d)", strings.TrimSpace(string(e.Raw)), e.StatusCode)
	default:
		return fmt.Sprintf("request rejected (status: %d)", e.StatusCode)
	}
}

// AlreadyExistsError is returned by CreateDatabase when the database is already present.
type AlreadyExistsError struct {
	Database string
	Err      *RemoteError
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("database %q already exists", e.Database)
}

// Unwrap exposes the underlying rejection.
func (e *AlreadyExistsError) Unwrap() error {
	if e.Err == nil {
		return nil
	}

	return e.Err
}

// Is reports whether target is ErrAlreadyExists.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ConnectionExhaustedError is returned when every attempt failed to reach the server.
type ConnectionExhaustedError struct {
	Endpoint string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ConnectionExhaustedError) Error() string {
	msg := fmt.Sprintf("gave up connecting to CouchDB after %d tries", e.Attempts)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Endpoint)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the transport error of the last attempt.
func (e *ConnectionExhaustedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConnectionExhausted.
func (e *ConnectionExhaustedError) Is(target error) bool {
	return target == ErrConnectionExhausted
}

// Common static errors that can be wrapped with context.
var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrConnectionExhausted = errors.New("connection attempts exhausted")
	ErrConfigRequired      = errors.New("config is required")
	ErrURLRequired         = errors.New("CouchDB URL is required")
	ErrDatabaseRequired    = errors.New("database name is required")
	ErrDocumentIDRequired  = errors.New("document ID is required")
	ErrInvalidMaxRetries   = errors.New("max retries must not be negative")
	ErrInvalidTimeout      = errors.New("timeout must not be negative")
)

// StatusCode returns the HTTP status carried by a rejection, or 0.
func StatusCode(err error) int {
	remoteErr := &RemoteError{}
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 rejection.
func IsNotFound(err error) bool {
	return StatusCode(err) == constants.HTTPStatusNotFound
}

// IsConflict checks if the error is a 409 rejection, usually a stale revision.
func IsConflict(err error) bool {
	return StatusCode(err) == constants.HTTPStatusConflict
}

// IsPreconditionFailed checks if the error is a 412 rejection.
func IsPreconditionFailed(err error) bool {
	return StatusCode(err) == constants.HTTPStatusPreconditionFailed
}

// IsAlreadyExists checks if the error reports an existing database.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConnectionExhausted checks if the error reports an unreachable server.
func IsConnectionExhausted(err error) bool {
	return errors.Is(err, ErrConnectionExhausted)
}

// ParseRemoteError builds a RemoteError from a status code and response body.
// Bodies that are not a JSON object are kept in Raw only.
func ParseRemoteError(statusCode int, data []byte) *RemoteError {
	remoteErr := &RemoteError{StatusCode: statusCode}
	if len(data) == 0 {
		return remoteErr
	}

	remoteErr.Raw = append(json.RawMessage(nil), data...)

	var body ErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		remoteErr.Body = body
	}

	return remoteErr
}
