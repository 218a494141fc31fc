package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open #%d", i)

		var count int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
		assert.Zero(t, count)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"user_version", strconv.Itoa(currentSchemaVersion)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.pragma(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_MigratesOldManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	// A version 0 manifest: the runs table without the index or
	// options_hash, holding one run.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO runs (id, service, input_hash, output_hash, outputs, seq, generator_version)
		VALUES ('r1', 's3', 'in', 'out', '["s3/endpoints.go"]', 1, '0.1.0')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	err = s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_runs_service_seq'`).Scan(&name)
	require.NoError(t, err, "index missing")

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(currentSchemaVersion), version)

	run, err := s.LastRun(context.Background(), "s3")
	require.NoError(t, err)
	assert.Equal(t, "in", run.InputHash)
	assert.Empty(t, run.OptionsHash, "old runs carry no options hash")
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "manifest.db"))
	require.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}
