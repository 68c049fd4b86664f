package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

// Variables read by the marketplace suite. Each falls back to its TEST_*
// counterpart so CI jobs written for the older names keep working.
const (
	EnvMarketplaceURL   = "LOCMAROC_TEST_URL"
	EnvMarketplaceDB    = "LOCMAROC_TEST_DB"
	EnvMarketplaceMongo = "LOCMAROC_TEST_MONGO_URI"
	EnvReadyWait        = "LOCMAROC_TEST_READY_WAIT"

	// EnvFile is loaded when present; real environment variables win.
	EnvFile = ".env.test"

	DefaultMarketplaceURL = "http://localhost:8080"
	// A cold server container connects to mongo before it serves /ready.
	DefaultReadyWait = 3 * ConnectionTimeout
)

var legacyEnv = map[string]string{
	EnvMarketplaceURL:   "TEST_SERVER_URL",
	EnvMarketplaceDB:    "TEST_DB_NAME",
	EnvMarketplaceMongo: "TEST_MONGO_URI",
}

// TestEnv describes the running marketplace server under test and the
// database it writes to.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ReadyWait    time.Duration
}

func NewTestEnv() *TestEnv {
	_ = godotenv.Load(EnvFile)

	wait := DefaultReadyWait
	if raw := os.Getenv(EnvReadyWait); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			wait = d
		}
	}

	return &TestEnv{
		MongoURI:     lookup(EnvMarketplaceMongo, DefaultMongoURI),
		DatabaseName: lookup(EnvMarketplaceDB, DefaultDatabaseName),
		ServerURL:    lookup(EnvMarketplaceURL, DefaultMarketplaceURL),
		ReadyWait:    wait,
	}
}

// Setup empties the marketplace collections, keeping the validators and
// indexes the migration job installed, and blocks until the server is ready.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollections(t, DataCollections...)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, e.ReadyWait)

	return mongo, client
}

// Cleanup leaves the database empty for the next test. Safe on a nil helper
// so a failed Setup does not panic in the deferred call.
func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()
	if mongo == nil {
		return
	}
	mongo.CleanCollections(t, DataCollections...)
	mongo.Close(t)
}

func lookup(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := os.Getenv(legacyEnv[key]); v != "" {
		return v
	}
	return def
}
