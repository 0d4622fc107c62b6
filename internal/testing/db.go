// Package testing provides shared test helpers for the prism project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/prismdash/prism/internal/clientdata"
	"github.com/prismdash/prism/internal/database"
)

// NewCacheDB creates a file-backed cache database in a per-test temp
// directory with the client data schema applied. The connection is closed
// automatically when the test finishes.
func NewCacheDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		t.Fatalf("Failed to create test cache database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test cache database: %v", err)
		}
	})

	if err := clientdata.InitSchema(db.Conn()); err != nil {
		t.Fatalf("Failed to apply client data schema: %v", err)
	}

	return db
}

// NewCacheRepository creates a ready-to-use cache repository backed by a
// temp-dir database. Useful for tests that only care about the repository
// surface.
func NewCacheRepository(t *testing.T) *clientdata.Repository {
	t.Helper()
	return clientdata.NewRepository(NewCacheDB(t).Conn())
}
