package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache", "index.db")
	ctx := context.Background()

	db, err := Connect(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()

	// Migrations must have created the index table.
	var n int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache_files").Scan(&n)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestConnect_EmptyPath(t *testing.T) {
	_, err := Connect(context.Background(), "")
	require.Error(t, err)
}
