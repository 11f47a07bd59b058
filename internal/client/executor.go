package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"sync"
	"syscall"
	"time"

	"github.com/fivetwenty-io/couchbeans/internal/http"
	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// attemptOutcome classifies a single request attempt.
type attemptOutcome int

const (
	attemptSucceeded attemptOutcome = iota
	attemptRejected
	attemptRefused
	attemptTimedOut
	attemptFailed
)

func (o attemptOutcome) String() string {
	switch o {
	case attemptSucceeded:
		return "succeeded"
	case attemptRejected:
		return "rejected"
	case attemptRefused:
		return "refused"
	case attemptTimedOut:
		return "timed out"
	default:
		return "failed"
	}
}

// transient reports whether the next attempt should be made.
func (o attemptOutcome) transient() bool {
	return o == attemptRefused || o == attemptTimedOut
}

type attemptResult struct {
	outcome attemptOutcome
	body    json.RawMessage
	err     error
}

// Executor is the single path every operation takes to the server. It
// retries refused and timed out attempts immediately, without backoff, and
// returns the first rejection as is.
type Executor struct {
	transport http.Doer
	logger    couch.Logger

	mu       sync.RWMutex
	settings couch.Settings
}

// NewExecutor creates an executor over transport.
func NewExecutor(transport http.Doer, settings couch.Settings, logger couch.Logger) *Executor {
	if logger == nil {
		logger = nopLogger{}
	}

	return &Executor{
		transport: transport,
		logger:    logger,
		settings:  settings,
	}
}

// Settings returns a snapshot of the current settings.
func (e *Executor) Settings() couch.Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings
}

// SetVerbose toggles logging of failed attempts.
func (e *Executor) SetVerbose(verbose bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.Verbose = verbose
}

// SetTimeout changes the per-attempt bound.
func (e *Executor) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.Timeout = timeout
}

// SetMaxRetries changes the number of attempts per call.
func (e *Executor) SetMaxRetries(maxRetries int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.MaxRetries = maxRetries
}

// Execute performs req and returns the body of the first 2xx response.
// Settings are read once, so a concurrent change applies to the next call.
func (e *Executor) Execute(ctx context.Context, req *http.Request) (json.RawMessage, error) {
	settings := e.Settings()
	request := prepareRequest(req)

	attempts := max(settings.MaxRetries, 0)

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result := e.attempt(ctx, request, settings.Timeout)

		if !result.outcome.transient() {
			if result.outcome == attemptSucceeded {
				return result.body, nil
			}

			return nil, result.err
		}

		lastErr = result.err

		if settings.Verbose {
			e.logAttempt(result, request, attempt)
		}
	}

	return nil, &couch.ConnectionExhaustedError{
		Endpoint: request.Path,
		Attempts: attempts,
		Err:      lastErr,
	}
}

func (e *Executor) attempt(ctx context.Context, req *http.Request, timeout time.Duration) attemptResult {
	attemptCtx := ctx
	cancel := func() {}

	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	resp, err := e.transport.Do(attemptCtx, req)
	if err != nil {
		return attemptResult{outcome: classifyTransportError(ctx, err), err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return attemptResult{outcome: attemptSucceeded, body: resp.Body}
	}

	return attemptResult{
		outcome: attemptRejected,
		err:     couch.ParseRemoteError(resp.StatusCode, resp.Body),
	}
}

func (e *Executor) logAttempt(result attemptResult, req *http.Request, attempt int) {
	msg := "Request refused"
	if result.outcome == attemptTimedOut {
		msg = "Request timed out"
	}

	e.logger.Debug(msg, map[string]interface{}{
		"method":   req.Method,
		"endpoint": req.Path,
		"attempt":  attempt,
		"error":    result.err.Error(),
	})
}

// prepareRequest copies req, dropping the body of verbs that carry none.
func prepareRequest(req *http.Request) *http.Request {
	request := *req
	if request.Method == nethttp.MethodGet || request.Method == nethttp.MethodDelete {
		request.Body = nil
	}

	return &request
}

// classifyTransportError decides whether a failed attempt may be retried.
// Cancellation of the caller's context never is.
func classifyTransportError(ctx context.Context, err error) attemptOutcome {
	if ctx.Err() != nil {
		return attemptFailed
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return attemptTimedOut
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return attemptTimedOut
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return attemptRefused
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return attemptRefused
	}

	return attemptFailed
}

// decode unmarshals a response body; an empty body leaves v untouched.
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, v)
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
