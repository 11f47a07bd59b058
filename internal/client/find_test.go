package client

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

func TestClient_Find(t *testing.T) {
	t.Parallel()

	t.Run("adds sort fields to the selector", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCouch(t)
		fake.seed("users", "alice", couch.Document{"name": "Alice", "age": 30})

		selector := couch.Selector{"age": map[string]interface{}{"$gt": 20}}

		docs, err := fake.newClient(t).Find(context.Background(), "users", selector, &couch.FindOptions{
			Sort: couch.Sort{couch.Asc("name")},
		})
		require.NoError(t, err)
		require.Len(t, docs, 1)

		posts := fake.requestsFor(nethttp.MethodPost)
		require.Len(t, posts, 1)
		assert.Equal(t, "/users/_find", posts[0].Path)

		sent, err := json.Marshal(posts[0].Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"selector": {"age": {"$gt": 20}, "name": {"$exists": true}},
			"sort": [{"name": "asc"}],
			"limit": 20
		}`, string(sent))

		assert.NotContains(t, selector, "name")
	})

	t.Run("keeps selector constraints on sorted fields", func(t *testing.T) {
		t.Parallel()

		query := buildMangoQuery(couch.Selector{"name": "Alice"}, &couch.FindOptions{Sort: couch.Sort{couch.Desc("name")}})
		assert.Equal(t, "Alice", query.Selector["name"])
	})

	t.Run("pages with skip and limit", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCouch(t)
		fake.createDatabase("users")

		_, err := fake.newClient(t).Find(context.Background(), "users", couch.Selector{}, &couch.FindOptions{
			Page:     2,
			PageSize: 10,
			Fields:   []string{"_id", "name"},
		})
		require.NoError(t, err)

		posts := fake.requestsFor(nethttp.MethodPost)
		require.Len(t, posts, 1)
		assert.InDelta(t, 20, posts[0].Body["skip"], 0)
		assert.InDelta(t, 10, posts[0].Body["limit"], 0)
		assert.Equal(t, []interface{}{"_id", "name"}, posts[0].Body["fields"])
	})

	t.Run("returns an empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		transport := newMockTransport(respond(200, `{"docs":null}`))
		client, err := NewWithTransport(&couch.Config{URL: "http://couch"}, transport)
		require.NoError(t, err)

		docs, err := client.Find(context.Background(), "users", nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("propagates an invalid query", func(t *testing.T) {
		t.Parallel()

		transport := newMockTransport(respond(400, `{"error":"bad_request","reason":"invalid selector"}`))
		client, err := NewWithTransport(&couch.Config{URL: "http://couch"}, transport)
		require.NoError(t, err)

		_, err = client.Find(context.Background(), "users", couch.Selector{"$bad": 1}, nil)
		require.Error(t, err)
		assert.Equal(t, 400, couch.StatusCode(err))
		assert.Equal(t, 1, transport.calls())
	})
}

func TestClient_FindAll(t *testing.T) {
	t.Parallel()

	t.Run("limits the query to the row count", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCouch(t)
		fake.seed("users", "alice", couch.Document{"name": "Alice"})
		fake.seed("users", "bob", couch.Document{"name": "Bob"})
		fake.seed("users", "carol", couch.Document{"name": "Carol"})

		docs, err := fake.newClient(t).FindAll(context.Background(), "users", couch.Selector{}, &couch.FindOptions{Page: 5, PageSize: 1})
		require.NoError(t, err)
		assert.Len(t, docs, 3)

		gets := fake.requestsFor(nethttp.MethodGet)
		require.Len(t, gets, 1)
		assert.Equal(t, "/users/_all_docs", gets[0].Path)
		assert.Equal(t, "limit=0", gets[0].RawQuery)

		posts := fake.requestsFor(nethttp.MethodPost)
		require.Len(t, posts, 1)
		assert.InDelta(t, 3, posts[0].Body["limit"], 0)
		assert.NotContains(t, posts[0].Body, "skip")
	})

	t.Run("undercounts a document added between the two requests", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCouch(t)
		fake.seed("users", "bob", couch.Document{"name": "Bob"})
		fake.seed("users", "carol", couch.Document{"name": "Carol"})
		fake.afterAllDocs = func(docs map[string]couch.Document) {
			docs["alice"] = couch.Document{"_id": "alice", "_rev": "1-late", "name": "Alice"}
		}

		docs, err := fake.newClient(t).FindAll(context.Background(), "users", couch.Selector{}, nil)
		require.NoError(t, err)

		posts := fake.requestsFor(nethttp.MethodPost)
		require.Len(t, posts, 1)
		assert.InDelta(t, 2, posts[0].Body["limit"], 0)

		require.Len(t, docs, 2)
		assert.Equal(t, "alice", docs[0].ID())
		assert.Equal(t, "bob", docs[1].ID())
		assert.NotNil(t, fake.stored("users", "carol"))
	})

	t.Run("fails when the database is missing", func(t *testing.T) {
		t.Parallel()

		fake := newFakeCouch(t)

		_, err := fake.newClient(t).FindAll(context.Background(), "missing", nil, nil)
		require.Error(t, err)
		assert.True(t, couch.IsNotFound(err))
		assert.Empty(t, fake.requestsFor(nethttp.MethodPost))
	})
}
