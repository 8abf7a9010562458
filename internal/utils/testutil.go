package utils

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Test helpers for packages exercising a real database. They live here rather
// than in a _test.go file so service and handler tests can import them.

var (
	testEnvOnce  sync.Once
	testMongoURI string
)

// testMongoAddr resolves MONGO_URI for tests, reading the repo root .env the
// first time a test asks for it. Resolution is lazy: importing this package
// from a running binary never touches the environment.
func testMongoAddr() string {
	testEnvOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		root := filepath.Join(filepath.Dir(filename), "..", "..")
		if err := godotenv.Load(filepath.Join(root, ".env")); err != nil {
			godotenv.Load()
		}
		testMongoURI = os.Getenv("MONGO_URI")
	})
	return testMongoURI
}

// SetupTestDB connects to the test MongoDB instance and returns the named
// database with the given collections dropped.
func SetupTestDB(t *testing.T, dbName string, collections ...string) *mongo.Database {
	t.Helper()

	uri := testMongoAddr()
	require.NotEmpty(t, uri, "MONGO_URI must be set to run database tests")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")

	db := client.Database(dbName)
	for _, collection := range collections {
		_ = db.Collection(collection).Drop(context.Background())
	}
	return db
}
