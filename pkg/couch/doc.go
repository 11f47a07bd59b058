// Package couch provides types, interfaces, and helpers for working with a
// CouchDB server over its HTTP API.
//
// # Overview
//
// The couch package defines the document and query types (Document,
// Selector, Sort, FindOptions) and the Client interface. A concrete
// implementation is provided by the couchclient package, which wires
// configuration, HTTP transport and the retrying query executor. Most
// consumers should import couchclient to construct a client and then use
// the interface defined here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/couchbeans/pkg/couch"
//	  "github.com/fivetwenty-io/couchbeans/pkg/couchclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := couchclient.New(&couch.Config{URL: "http://localhost:5984"})
//	  if err != nil { log.Fatal(err) }
//
//	  _, err = cli.PutDocument(ctx, "users", "alice", couch.Document{"name": "Alice"}, nil)
//	  if err != nil { log.Fatal(err) }
//
//	  docs, err := cli.Find(ctx, "users", couch.Selector{"name": "Alice"}, &couch.FindOptions{
//	    Sort: couch.Sort{couch.Asc("name")},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = docs
//	}
//
// # Retries
//
// Every request goes through one executor. A refused connection or an
// attempt that outlives Settings.Timeout is retried at once, up to
// Settings.MaxRetries attempts in total, after which a
// *ConnectionExhaustedError is returned. Any non-2xx answer is returned
// immediately as a *RemoteError and is never retried.
//
// # Revisions
//
// PutDocument and PatchDocument look up the stored "_rev" before writing, so
// by default a write replaces the current document. The lookup and the
// write are separate requests: a concurrent writer in between produces a
// conflict, reported by IsConflict.
//
// # Errors
//
// Helpers such as IsNotFound, IsConflict, IsAlreadyExists and
// IsConnectionExhausted make it easy to branch on common cases.
package couch
