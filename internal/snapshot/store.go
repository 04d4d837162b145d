// Package snapshot persists flattened unified trees to SQLite so that
// successive exports of a file can be queried and compared.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// ErrClosed is returned by operations on a store without a database.
var ErrClosed = errors.New("snapshot store is closed")

// Snapshot describes one exported file tree.
type Snapshot struct {
	ID         string
	SourcePath string
	Package    string
	NodeCount  int
	CreatedAt  time.Time
}

// Node is one flattened element of a snapshot. IDs are assigned in
// pre-order starting at 1; ParentID is 0 for the root.
type Node struct {
	ID          int
	ParentID    int
	Kind        string
	SourceKind  string
	Name        string
	DisplayName string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Store is a SQLite-backed snapshot store.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens (creating if needed) the database at path and runs pending
// migrations. Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := New(db, opts...)
	s.path = path
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug("snapshot store opened", slog.String("path", path))
	return s, nil
}

// New wraps an existing database handle. Migrations are not run.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Flatten assigns pre-order IDs to every element under root.
func Flatten(root uast.Element) []Node {
	var nodes []Node
	ids := make(map[uast.Element]int)
	uast.Walk(root, func(el uast.Element) bool {
		n := Node{
			ID:          len(nodes) + 1,
			ParentID:    ids[el.Parent()],
			Kind:        el.Kind().String(),
			Name:        uast.NameOf(el),
			DisplayName: uast.DisplayName(el),
		}
		if src := el.Source(); src != nil {
			n.SourceKind = string(src.Kind())
			span := src.Span()
			n.StartLine, n.StartColumn = span.Start.Line, span.Start.Column
			n.EndLine, n.EndColumn = span.End.Line, span.End.Column
		}
		ids[el] = n.ID
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// Write stores the tree rooted at root as a new snapshot in a single
// transaction and returns it.
func (s *Store) Write(ctx context.Context, root uast.Element, sourcePath string) (Snapshot, error) {
	if s.db == nil {
		return Snapshot{}, ErrClosed
	}
	if root == nil {
		return Snapshot{}, fmt.Errorf("write snapshot of %s: nil tree", sourcePath)
	}

	nodes := Flatten(root)
	snap := Snapshot{
		ID:         uuid.New().String(),
		SourcePath: sourcePath,
		NodeCount:  len(nodes),
		CreatedAt:  s.now().UTC(),
	}
	if f := uast.EnclosingFile(root); f != nil {
		snap.Package = f.PackageName()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, source_path, package, node_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, snap.SourcePath, snap.Package, snap.NodeCount, snap.CreatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (snapshot_id, id, parent_id, kind, source_kind, name, display_name,
			start_line, start_column, end_line, end_column)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare node insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range nodes {
		var parent sql.NullInt64
		if n.ParentID != 0 {
			parent = sql.NullInt64{Int64: int64(n.ParentID), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, n.ID, parent, n.Kind, n.SourceKind, n.Name,
			n.DisplayName, n.StartLine, n.StartColumn, n.EndLine, n.EndColumn); err != nil {
			return Snapshot{}, fmt.Errorf("insert node %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}
	s.logger.Debug("snapshot written",
		slog.String("id", snap.ID),
		slog.String("source", sourcePath),
		slog.Int("nodes", snap.NodeCount))
	return snap, nil
}

// Snapshots lists the snapshots of sourcePath, newest first. An empty
// sourcePath lists every snapshot.
func (s *Store) Snapshots(ctx context.Context, sourcePath string) ([]Snapshot, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, package, node_count, created_at
		FROM snapshots
		WHERE ? = '' OR source_path = ?
		ORDER BY created_at DESC, id
	`, sourcePath, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.SourcePath, &snap.Package, &snap.NodeCount, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Nodes returns the nodes of a snapshot ordered by ID.
func (s *Store) Nodes(ctx context.Context, snapshotID string) ([]Node, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, kind, source_kind, name, display_name,
			start_line, start_column, end_line, end_column
		FROM nodes
		WHERE snapshot_id = ?
		ORDER BY id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Node
	for rows.Next() {
		var n Node
		var parent sql.NullInt64
		if err := rows.Scan(&n.ID, &parent, &n.Kind, &n.SourceKind, &n.Name, &n.DisplayName,
			&n.StartLine, &n.StartColumn, &n.EndLine, &n.EndColumn); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.ParentID = int(parent.Int64)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete removes a snapshot and its nodes.
func (s *Store) Delete(ctx context.Context, snapshotID string) error {
	if s.db == nil {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("snapshot %s: %w", snapshotID, sql.ErrNoRows)
	}
	return nil
}
