package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/evergreen-ci/fmtasks"
	"github.com/stretchr/testify/require"
)

const (
	// MongoDBURIEnvVar names the database integration tests run
	// against. Integration tests are skipped when it is not set.
	MongoDBURIEnvVar = "FMTASKS_TEST_MONGODB_URI"

	TestDatabaseName   = "fmtasks-test"
	TestCollectionName = "tasks-test"
)

// TestSettings returns validated settings pointing at the test
// database, skipping the test if no test database is configured.
func TestSettings(t *testing.T) *fmtasks.Settings {
	uri := os.Getenv(MongoDBURIEnvVar)
	if uri == "" {
		t.Skipf("%s is not set, skipping integration test", MongoDBURIEnvVar)
	}

	settings := &fmtasks.Settings{}
	settings.Database.Url = uri
	settings.Database.DB = TestDatabaseName
	settings.Database.Collection = TestCollectionName
	require.NoError(t, settings.Validate())

	return settings
}

// NewEnvironment returns an environment connected to the test database
// with an empty task collection. The collection is dropped again and
// the environment closed when the test finishes.
func NewEnvironment(ctx context.Context, t *testing.T) fmtasks.Environment {
	env, err := fmtasks.NewEnvironment(ctx, TestSettings(t))
	require.NoError(t, err)

	coll := env.DB().Collection(env.Settings().Database.Collection)
	require.NoError(t, coll.Drop(ctx))

	t.Cleanup(func() {
		cleanupCtx := context.Background()
		require.NoError(t, coll.Drop(cleanupCtx))
		require.NoError(t, env.Close(cleanupCtx))
	})

	return env
}
