package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	require.NoError(t, InitSchema(db))

	return db
}

func TestNewRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	assert.NotNil(t, repo)
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	data := map[string]interface{}{
		"date":  "2024-01-01",
		"value": 123.45,
	}

	err := repo.Store("portfolio_history", "acct-1:1M", data, 15*time.Minute)
	require.NoError(t, err)

	// Verify data was stored
	var blob []byte
	var expiresAt int64
	err = db.QueryRow("SELECT data, expires_at FROM portfolio_history WHERE cache_key = ?", "acct-1:1M").Scan(&blob, &expiresAt)
	require.NoError(t, err)

	var parsed map[string]interface{}
	err = msgpack.Unmarshal(blob, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", parsed["date"])

	// Verify expiration is roughly 15 minutes from now
	expectedExpires := time.Now().Add(15 * time.Minute).Unix()
	assert.InDelta(t, expectedExpires, expiresAt, 5)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store("portfolio_history", "acct-1:1M", map[string]string{"version": "1"}, time.Hour)
	require.NoError(t, err)

	err = repo.Store("portfolio_history", "acct-1:1M", map[string]string{"version": "2"}, time.Hour)
	require.NoError(t, err)

	// Verify only one row exists with updated data
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM portfolio_history WHERE cache_key = ?", "acct-1:1M").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	result, err := repo.GetIfFresh("portfolio_history", "acct-1:1M")
	require.NoError(t, err)
	require.NotNil(t, result)

	var parsed map[string]string
	err = msgpack.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "2", parsed["version"])
}

func TestGetIfFresh_Fresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store("metric_series", "acct-1:sharpe", map[string]string{"status": "fresh"}, time.Hour)
	require.NoError(t, err)

	result, err := repo.GetIfFresh("metric_series", "acct-1:sharpe")
	require.NoError(t, err)
	require.NotNil(t, result)

	var parsed map[string]string
	err = msgpack.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "fresh", parsed["status"])
}

func TestGetIfFresh_Expired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	// Insert expired data directly (expired 1 hour ago)
	blob, err := msgpack.Marshal(map[string]string{"status": "expired"})
	require.NoError(t, err)
	expiredAt := time.Now().Add(-time.Hour).Unix()
	_, err = db.Exec(
		"INSERT INTO metric_series (cache_key, data, expires_at) VALUES (?, ?, ?)",
		"acct-1:sharpe", blob, expiredAt,
	)
	require.NoError(t, err)

	result, err := repo.GetIfFresh("metric_series", "acct-1:sharpe")
	require.NoError(t, err)
	assert.Nil(t, result, "Expected nil for expired data")
}

func TestGet_ReturnsStaleData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	blob, err := msgpack.Marshal(map[string]string{"status": "stale_but_useful"})
	require.NoError(t, err)
	expiredAt := time.Now().Add(-time.Hour).Unix()
	_, err = db.Exec(
		"INSERT INTO accounts (cache_key, data, expires_at) VALUES (?, ?, ?)",
		"all", blob, expiredAt,
	)
	require.NoError(t, err)

	// GetIfFresh should return nil
	result, err := repo.GetIfFresh("accounts", "all")
	require.NoError(t, err)
	assert.Nil(t, result, "GetIfFresh should return nil for expired data")

	// Get should return the stale data (useful when API fails)
	result, err = repo.Get("accounts", "all")
	require.NoError(t, err)
	require.NotNil(t, result, "Get should return stale data")

	var parsed map[string]string
	err = msgpack.Unmarshal(result, &parsed)
	require.NoError(t, err)
	assert.Equal(t, "stale_but_useful", parsed["status"])
}

func TestGetIfFresh_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	result, err := repo.GetIfFresh("accounts", "NONEXISTENT")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = repo.Get("accounts", "NONEXISTENT")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store("allocation_history", "acct-1:ALL", map[string]string{"to_delete": "true"}, time.Hour)
	require.NoError(t, err)

	err = repo.Delete("allocation_history", "acct-1:ALL")
	require.NoError(t, err)

	result, err := repo.GetIfFresh("allocation_history", "acct-1:ALL")
	require.NoError(t, err)
	assert.Nil(t, result)

	// Deleting a non-existent key should not error
	err = repo.Delete("allocation_history", "NONEXISTENT")
	require.NoError(t, err)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	blob, err := msgpack.Marshal(map[string]string{})
	require.NoError(t, err)

	for key, expiry := range map[string]int64{
		"acct-1:1M": expiredAt,
		"acct-2:1M": expiredAt,
		"acct-3:1M": expiredAt,
		"acct-4:1M": freshAt,
		"acct-5:1M": freshAt,
	} {
		_, err = db.Exec("INSERT INTO portfolio_history (cache_key, data, expires_at) VALUES (?, ?, ?)", key, blob, expiry)
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteExpired("portfolio_history")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM portfolio_history").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	blob, err := msgpack.Marshal(map[string]string{})
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO portfolio_history (cache_key, data, expires_at) VALUES (?, ?, ?)", "acct-1:1M", blob, expiredAt)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO portfolio_history (cache_key, data, expires_at) VALUES (?, ?, ?)", "acct-2:1M", blob, freshAt)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO metric_series (cache_key, data, expires_at) VALUES (?, ?, ?)", "acct-1:sharpe", blob, expiredAt)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO metric_series (cache_key, data, expires_at) VALUES (?, ?, ?)", "acct-1:volatility", blob, expiredAt)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO accounts (cache_key, data, expires_at) VALUES (?, ?, ?)", "all", blob, freshAt)
	require.NoError(t, err)

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)

	assert.Equal(t, int64(1), results["portfolio_history"])
	assert.Equal(t, int64(2), results["metric_series"])
	assert.Equal(t, int64(0), results["accounts"])
	assert.Equal(t, int64(0), results["allocation_history"])
}

func TestInvalidTableName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	// All methods should reject invalid table names
	t.Run("Store", func(t *testing.T) {
		err := repo.Store("invalid_table; DROP TABLE accounts;--", "key", map[string]string{}, time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("GetIfFresh", func(t *testing.T) {
		_, err := repo.GetIfFresh("users", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("Get", func(t *testing.T) {
		_, err := repo.Get("passwords", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("Delete", func(t *testing.T) {
		err := repo.Delete("secrets", "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		_, err := repo.DeleteExpired("nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid table name")
	})
}

func TestValidateTable(t *testing.T) {
	// All tables in AllTables should be valid
	for _, table := range AllTables {
		t.Run(table, func(t *testing.T) {
			assert.NoError(t, validateTable(table))
		})
	}
}
