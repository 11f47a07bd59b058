// Package couchclient provides the primary entry point for constructing a
// CouchDB client that implements the couch.Client interface.
//
// It layers configuration and the retrying HTTP executor on top of the
// interfaces and types defined in the couch package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "time"
//
//	  "github.com/fivetwenty-io/couchbeans/pkg/couch"
//	  "github.com/fivetwenty-io/couchbeans/pkg/couchclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Minimal: just a server address (no auth).
//	  cli, err := couchclient.NewWithURL("localhost:5984")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with credentials and tuned retries:
//	  cli, err = couchclient.New(&couch.Config{
//	    URL:        "https://couch.example.com",
//	    Username:   "admin",
//	    Password:   "secret",
//	    MaxRetries: 5,
//	    Timeout:    10 * time.Second,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  version, err := cli.ServerVersion(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = version
//	}
//
// # Addresses
//
// A trailing slash is removed and "http://" is assumed when the address has
// no scheme. Connect additionally fetches the welcome document so a wrong
// address fails at start-up instead of on first use.
package couchclient
