package couch

import (
	"github.com/fivetwenty-io/couchbeans/internal/constants"
)

// Document is a JSON object stored in a database. Stored documents carry
// "_id" and "_rev"; the revision is opaque and must be sent back unchanged.
type Document map[string]interface{}

// ID returns the document identifier, or "" when absent.
func (d Document) ID() string {
	id, _ := d[constants.FieldID].(string)

	return id
}

// Rev returns the revision token, or "" when the document was never stored.
func (d Document) Rev() string {
	rev, _ := d[constants.FieldRev].(string)

	return rev
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	clone := make(Document, len(d))
	for key, value := range d {
		clone[key] = value
	}

	return clone
}

// Merge returns a shallow copy of d with every key of diff written over it.
func (d Document) Merge(diff Document) Document {
	merged := d.Clone()
	for key, value := range diff {
		merged[key] = value
	}

	return merged
}

// Selector is a Mango filter expression. It is sent to the server verbatim.
type Selector map[string]interface{}

// Clone returns a shallow copy of the selector.
func (s Selector) Clone() Selector {
	clone := make(Selector, len(s))
	for key, value := range s {
		clone[key] = value
	}

	return clone
}

// Sort is a Mango sort specification such as [{"name": "asc"}].
type Sort []map[string]string

// Fields returns every field named by the sort, in order.
func (s Sort) Fields() []string {
	var fields []string

	for _, entry := range s {
		for field := range entry {
			fields = append(fields, field)
		}
	}

	return fields
}

// Asc sorts by field in ascending order.
func Asc(field string) map[string]string {
	return map[string]string{field: "asc"}
}

// Desc sorts by field in descending order.
func Desc(field string) map[string]string {
	return map[string]string{field: "desc"}
}

// FindOptions shapes a Mango query. FindAll ignores Page and PageSize.
type FindOptions struct {
	// Fields restricts the returned document keys.
	Fields []string
	// Sort orders the result. Sorted fields missing from the selector are
	// added to it as {"$exists": true}.
	Sort Sort
	// Page is zero based.
	Page int
	// PageSize defaults to 20 when zero.
	PageSize int
}

// MangoQuery is the body posted to /{db}/_find.
type MangoQuery struct {
	Selector Selector `json:"selector"         yaml:"selector"`
	Skip     int      `json:"skip,omitempty"   yaml:"skip,omitempty"`
	Limit    int      `json:"limit"            yaml:"limit"`
	Sort     Sort     `json:"sort,omitempty"   yaml:"sort,omitempty"`
	Fields   []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FindResponse is the response of /{db}/_find.
type FindResponse struct {
	Docs     []Document `json:"docs"               yaml:"docs"`
	Bookmark string     `json:"bookmark,omitempty" yaml:"bookmark,omitempty"`
	Warning  string     `json:"warning,omitempty"  yaml:"warning,omitempty"`
}

// AllDocsResponse is the part of /{db}/_all_docs the client reads.
type AllDocsResponse struct {
	TotalRows int `json:"total_rows" yaml:"total_rows"`
	Offset    int `json:"offset"     yaml:"offset"`
}

// CreateDatabaseOptions configures a new database. Nil Shards and Replicas
// leave the server defaults in place.
type CreateDatabaseOptions struct {
	Shards      *int
	Replicas    *int
	Partitioned bool
}

// PutOptions controls PutDocument.
type PutOptions struct {
	// NoOverwrite skips the revision lookup, so writing over an existing
	// document is rejected by the server with a conflict.
	NoOverwrite bool
	// Strict also skips the revision lookup; the caller supplies "_rev".
	Strict bool
}

// DeleteOptions controls DeleteDocument.
type DeleteOptions struct {
	// Strict returns the not-found rejection instead of reporting false.
	Strict bool
}

// PatchOptions controls PatchDocument.
type PatchOptions struct {
	// Strict returns the not-found rejection instead of merging into {}.
	Strict bool
}

// DocumentResult is the server's answer to a document write.
type DocumentResult struct {
	OK  bool   `json:"ok"  yaml:"ok"`
	ID  string `json:"id"  yaml:"id"`
	Rev string `json:"rev" yaml:"rev"`
}

// OKResponse is the answer to database level operations.
type OKResponse struct {
	OK bool `json:"ok" yaml:"ok"`
}

// ServerInfo is the welcome document served at the root.
type ServerInfo struct {
	CouchDB  string            `json:"couchdb"            yaml:"couchdb"`
	Version  string            `json:"version,omitempty"  yaml:"version,omitempty"`
	GitSHA   string            `json:"git_sha,omitempty"  yaml:"git_sha,omitempty"`
	UUID     string            `json:"uuid,omitempty"     yaml:"uuid,omitempty"`
	Features []string          `json:"features,omitempty" yaml:"features,omitempty"`
	Vendor   map[string]string `json:"vendor,omitempty"   yaml:"vendor,omitempty"`
}

// Intp returns a pointer to v, for CreateDatabaseOptions.
func Intp(v int) *int {
	return &v
}
