package snapshot

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/internal/testutil"
	"github.com/leapstack-labs/leapuast/pkg/frontend/kotlin"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

const source = `package demo

class Box(val size: Int) {
    fun area(): Int {
        return size * size
    }
}
`

var fixed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tree(t *testing.T) uast.Element {
	t.Helper()
	root, err := kotlin.NewParser().Parse(t.Context(), []byte(source), "box.kt")
	require.NoError(t, err)
	return uast.Convert(root, nil)
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(t.Context(), path, WithLogger(testutil.NewTestLogger(t)), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFlatten(t *testing.T) {
	nodes := Flatten(tree(t))
	require.NotEmpty(t, nodes)

	root := nodes[0]
	assert.Equal(t, 1, root.ID)
	assert.Equal(t, 0, root.ParentID)
	assert.Equal(t, "File", root.Kind)

	seen := map[int]bool{}
	var names []string
	for i, n := range nodes {
		assert.Equal(t, i+1, n.ID, "pre-order ids")
		if i > 0 {
			assert.True(t, seen[n.ParentID], "parent of %s is emitted first", n.Kind)
		}
		seen[n.ID] = true
		if n.Kind == "Class" || n.Kind == "Function" {
			names = append(names, n.Name)
		}
	}
	assert.Equal(t, []string{"Box", "area"}, names)
	assert.Nil(t, Flatten(nil))
}

func TestStore_RoundTrip(t *testing.T) {
	s := openStore(t, ":memory:")

	version, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	root := tree(t)
	snap, err := s.Write(t.Context(), root, "box.kt")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "demo", snap.Package)
	assert.Equal(t, fixed, snap.CreatedAt)

	nodes, err := s.Nodes(t.Context(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, Flatten(root), nodes)
	assert.Equal(t, snap.NodeCount, len(nodes))

	second, err := s.Write(t.Context(), root, "other.kt")
	require.NoError(t, err)

	all, err := s.Snapshots(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := s.Snapshots(t.Context(), "box.kt")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, snap.ID, only[0].ID)
	assert.True(t, fixed.Equal(only[0].CreatedAt))

	var decls int
	require.NoError(t, s.db.QueryRowContext(t.Context(),
		`SELECT COUNT(*) FROM declarations WHERE snapshot_id = ? AND name = 'area'`, snap.ID).Scan(&decls))
	assert.Equal(t, 1, decls)

	require.NoError(t, s.Delete(t.Context(), second.ID))
	nodes, err = s.Nodes(t.Context(), second.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes, "nodes cascade with their snapshot")
	assert.ErrorIs(t, s.Delete(t.Context(), second.ID), sql.ErrNoRows)
}

func TestStore_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	s, err := Open(t.Context(), path)
	require.NoError(t, err)
	snap, err := s.Write(t.Context(), tree(t), "box.kt")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	assert.Equal(t, path, reopened.Path())
	got, err := reopened.Snapshots(t.Context(), "box.kt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snap.ID, got[0].ID)
}

func TestStore_Closed(t *testing.T) {
	s := openStore(t, ":memory:")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Write(t.Context(), tree(t), "box.kt")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Nodes(t.Context(), "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Snapshots(t.Context(), "")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(t.Context(), "x"), ErrClosed)
	assert.ErrorIs(t, s.Migrate(t.Context()), ErrClosed)
}

func TestStore_WriteFailures(t *testing.T) {
	root := tree(t)
	count := len(Flatten(root))

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr string
	}{
		{
			name: "begin",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(assert.AnError)
			},
			wantErr: "begin transaction",
		},
		{
			name: "snapshot insert",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO snapshots").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			wantErr: "insert snapshot",
		},
		{
			name: "node insert",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO snapshots").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectPrepare("INSERT INTO nodes").ExpectExec().WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			wantErr: "insert node 1",
		},
		{
			name: "commit",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO snapshots").WillReturnResult(sqlmock.NewResult(0, 1))
				prep := mock.ExpectPrepare("INSERT INTO nodes")
				for range count {
					prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
				}
				mock.ExpectCommit().WillReturnError(assert.AnError)
			},
			wantErr: "commit snapshot",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)
			_, err = New(db).Write(t.Context(), root, "box.kt")
			require.Error(t, err)
			assert.ErrorIs(t, err, assert.AnError)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_WriteNilTree(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	s := New(db)
	_, err = s.Write(t.Context(), nil, "empty.kt")
	assert.ErrorContains(t, err, "nil tree")
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
