package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

// recordedRequest is a request seen by fakeCouch.
type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     map[string]interface{}
}

// fakeCouch is a small in-memory CouchDB speaking just enough of the
// protocol for the document operations.
type fakeCouch struct {
	mu        sync.Mutex
	databases map[string]map[string]couch.Document
	requests  []recordedRequest
	server    *httptest.Server

	// afterAllDocs runs with the lock held once an _all_docs reply is written.
	afterAllDocs func(docs map[string]couch.Document)
}

func newFakeCouch(t *testing.T) *fakeCouch {
	t.Helper()

	fake := &fakeCouch{databases: make(map[string]map[string]couch.Document)}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.server.Close)

	return fake
}

// newClient returns a client for the fake server with default settings.
func (f *fakeCouch) newClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(&couch.Config{URL: f.server.URL})
	require.NoError(t, err)

	return client
}

// seed stores a document with a first revision.
func (f *fakeCouch) seed(database, id string, document couch.Document) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.databases[database] == nil {
		f.databases[database] = make(map[string]couch.Document)
	}

	stored := document.Clone()
	stored["_id"] = id
	stored["_rev"] = "1-seed"
	f.databases[database][id] = stored

	return "1-seed"
}

func (f *fakeCouch) createDatabase(database string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.databases[database] = make(map[string]couch.Document)
}

func (f *fakeCouch) stored(database, id string) couch.Document {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.databases[database][id]
}

// requestsFor returns the recorded requests with the given method.
func (f *fakeCouch) requestsFor(method string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []recordedRequest

	for _, req := range f.requests {
		if req.Method == method {
			matched = append(matched, req)
		}
	}

	return matched
}

func (f *fakeCouch) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, recordedRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Body:     body,
	})

	if r.URL.Path == "/" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"couchdb": "Welcome", "version": "3.3.3", "uuid": "abc"})

		return
	}

	segments := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	database := segments[0]

	if len(segments) == 1 {
		f.handleDatabase(w, r, database)

		return
	}

	docs, ok := f.databases[database]
	if !ok {
		writeJSON(w, http.StatusNotFound, couch.ErrorBody{Error: "not_found", Reason: "Database does not exist."})

		return
	}

	switch segments[1] {
	case "_find":
		writeJSON(w, http.StatusOK, map[string]interface{}{"docs": pageDocs(sortedDocs(docs), body)})
	case "_all_docs":
		writeJSON(w, http.StatusOK, map[string]interface{}{"total_rows": len(docs), "offset": 0, "rows": []interface{}{}})

		if f.afterAllDocs != nil {
			f.afterAllDocs(docs)
		}
	default:
		f.handleDocument(w, r, docs, segments[1], body)
	}
}

func (f *fakeCouch) handleDatabase(w http.ResponseWriter, r *http.Request, database string) {
	_, exists := f.databases[database]

	switch r.Method {
	case http.MethodPut:
		if exists {
			writeJSON(w, http.StatusPreconditionFailed, couch.ErrorBody{
				Error:  "file_exists",
				Reason: "The database could not be created, the file already exists.",
			})

			return
		}

		f.databases[database] = make(map[string]couch.Document)
		writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	case http.MethodDelete:
		if !exists {
			writeJSON(w, http.StatusNotFound, couch.ErrorBody{Error: "not_found", Reason: "Database does not exist."})

			return
		}

		delete(f.databases, database)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, couch.ErrorBody{Error: "method_not_allowed"})
	}
}

func (f *fakeCouch) handleDocument(w http.ResponseWriter, r *http.Request, docs map[string]couch.Document, id string, body map[string]interface{}) {
	current, exists := docs[id]

	switch r.Method {
	case http.MethodGet:
		if !exists {
			writeJSON(w, http.StatusNotFound, couch.ErrorBody{Error: "not_found", Reason: "missing"})

			return
		}

		writeJSON(w, http.StatusOK, current)
	case http.MethodPut:
		rev, _ := body["_rev"].(string)
		if (exists && rev != current.Rev()) || (!exists && rev != "") {
			writeJSON(w, http.StatusConflict, couch.ErrorBody{Error: "conflict", Reason: "Document update conflict."})

			return
		}

		stored := couch.Document(body).Clone()
		stored["_id"] = id
		stored["_rev"] = nextRev(current.Rev())
		docs[id] = stored
		writeJSON(w, http.StatusCreated, couch.DocumentResult{OK: true, ID: id, Rev: stored.Rev()})
	case http.MethodDelete:
		if !exists {
			writeJSON(w, http.StatusNotFound, couch.ErrorBody{Error: "not_found", Reason: "missing"})

			return
		}

		if r.URL.Query().Get("rev") != current.Rev() {
			writeJSON(w, http.StatusConflict, couch.ErrorBody{Error: "conflict", Reason: "Document update conflict."})

			return
		}

		delete(docs, id)
		writeJSON(w, http.StatusOK, couch.DocumentResult{OK: true, ID: id, Rev: nextRev(current.Rev())})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, couch.ErrorBody{Error: "method_not_allowed"})
	}
}

func nextRev(rev string) string {
	var generation int
	if rev != "" {
		_, _ = fmt.Sscanf(rev, "%d-", &generation)
	}

	return fmt.Sprintf("%d-fake", generation+1)
}

func sortedDocs(docs map[string]couch.Document) []couch.Document {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	result := make([]couch.Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, docs[id])
	}

	return result
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.record("debug", msg, fields)
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.record("info", msg, fields)
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.record("warn", msg, fields)
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.record("error", msg, fields)
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) entries() []map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]map[string]interface{}(nil), l.logs...)
}

// recordingNotifier captures mutation events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []couch.MutationEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event couch.MutationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, event)

	return n.err
}

func (n *recordingNotifier) recorded() []couch.MutationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]couch.MutationEvent(nil), n.events...)
}

// pageDocs applies the skip and limit of a Mango query body.
func pageDocs(docs []couch.Document, body map[string]interface{}) []couch.Document {
	if skip, ok := body["skip"].(float64); ok {
		docs = docs[min(int(skip), len(docs)):]
	}

	if limit, ok := body["limit"].(float64); ok {
		docs = docs[:min(int(limit), len(docs))]
	}

	return docs
}
