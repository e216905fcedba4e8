package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		fmt.Println("TEST_MONGO_URI not set, skipping integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	testDB = client.Database("tuushop_test")
	if err := EnsureIndexes(ctx, testDB); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create indexes: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func cleanupCollections(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := testDB.Collection(name).DeleteMany(context.Background(), bson.M{}); err != nil {
			t.Fatalf("failed to cleanup collection %s: %v", name, err)
		}
	}
}
