package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrator_AppliesInVersionOrder(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	// Listed out of order on purpose
	fsys := fstest.MapFS{
		"002_add_column.sql":   {Data: []byte(`ALTER TABLE widgets ADD COLUMN label TEXT;`)},
		"001_create_table.sql": {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`)},
	}

	require.NoError(t, m.Run(fsys))

	_, err := db.Exec(`INSERT INTO widgets (id, label) VALUES (1, 'a')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestMigrator_RunIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_create_table.sql": {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`)},
	}

	require.NoError(t, m.Run(fsys))
	require.NoError(t, m.Run(fsys))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte(`CREATE TABL nope;`)},
	}

	err := m.Run(fsys)
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Zero(t, count)
}

func TestMigrator_RejectsBadFileName(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"schema.sql": {Data: []byte(`CREATE TABLE widgets (id INTEGER PRIMARY KEY);`)},
	}

	assert.Error(t, m.Run(fsys))
}
