//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/couchbeans/pkg/couch"
)

func TestClient_DocumentLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := config.NewClient(t)
	ctx := context.Background()
	database := GenerateTestName("lifecycle")

	require.NoError(t, client.CreateDatabase(ctx, database, &couch.CreateDatabaseOptions{Shards: couch.Intp(1)}))
	defer CleanupDatabase(t, client, database)

	err := client.CreateDatabase(ctx, database, nil)
	require.Error(t, err)
	assert.True(t, couch.IsAlreadyExists(err))

	first, err := client.PutDocument(ctx, database, "x", couch.Document{"a": 1, "b": 2}, nil)
	require.NoError(t, err)

	second, err := client.PutDocument(ctx, database, "x", couch.Document{"a": 1, "b": 2}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Rev, second.Rev)

	_, err = client.PatchDocument(ctx, database, "x", couch.Document{"b": 3, "c": 4}, nil)
	require.NoError(t, err)

	doc, err := client.GetDocument(ctx, database, "x")
	require.NoError(t, err)
	assert.InDelta(t, 1, doc["a"], 0)
	assert.InDelta(t, 3, doc["b"], 0)
	assert.InDelta(t, 4, doc["c"], 0)

	deleted, err := client.DeleteDocument(ctx, database, "x", nil)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = client.DeleteDocument(ctx, database, "x", nil)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestClient_Queries(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := config.NewClient(t)
	ctx := context.Background()
	database := GenerateTestName("queries")

	require.NoError(t, client.CreateDatabase(ctx, database, nil))
	defer CleanupDatabase(t, client, database)

	for i, name := range []string{"carol", "alice", "bob", "dave"} {
		_, err := client.PutDocument(ctx, database, name, couch.Document{"name": name, "rank": i}, nil)
		require.NoError(t, err)
	}

	// Sorting on an unindexed field needs an index in CouchDB; _id always has one.
	page, err := client.Find(ctx, database, couch.Selector{}, &couch.FindOptions{
		Sort:     couch.Sort{couch.Asc("_id")},
		PageSize: 2,
		Page:     1,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "carol", page[0].ID())
	assert.Equal(t, "dave", page[1].ID())

	all, err := client.FindAll(ctx, database, couch.Selector{"rank": map[string]interface{}{"$gte": 1}}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
