// Package semantic implements a lexical-scope semantic engine over cst trees.
//
// The engine resolves names to their declarations, classifies ambiguous and
// built-in references, and folds compile-time constants. Partial analysis
// sees the file containing the queried node; full analysis additionally sees
// every file registered with AddFile.
package semantic

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// ErrDetached is returned when a node does not belong to a file tree.
var ErrDetached = errors.New("node is not attached to a file")

// Option configures an Engine.
type Option func(*Engine)

// WithBuiltins adds names that resolve to synthetic declarations.
func WithBuiltins(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.builtins[n] = true
		}
	}
}

// WithBuiltinTypes adds type names that resolve to synthetic classes.
func WithBuiltinTypes(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.builtinTypes[n] = true
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine builds and caches per-file scope indexes. Registered files keep
// their index until removed; at most one unregistered tree is cached at a
// time. It is safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	files   []cst.Node
	cache   map[cst.Node]*cachedIndex
	scratch cst.Node

	builtins     map[string]bool
	builtinTypes map[string]bool
	logger       *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type cachedIndex struct {
	generation uint64
	idx        *fileIndex
}

// generational is implemented by trees that count their own edits, such as
// *cst.Element.
type generational interface {
	Generation() uint64
}

// NewEngine creates an engine with the default built-in names.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:        make(map[cst.Node]*cachedIndex),
		builtins:     make(map[string]bool),
		builtinTypes: make(map[string]bool),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, n := range defaultBuiltins {
		e.builtins[n] = true
	}
	for _, n := range defaultBuiltinTypes {
		e.builtinTypes[n] = true
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddFile registers a file root for full-depth analysis. Registering the same
// root twice has no effect.
func (e *Engine) AddFile(root cst.Node) {
	if root == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scratch == root {
		e.scratch = nil
	}
	if slices.Contains(e.files, root) {
		return
	}
	e.files = append(e.files, root)
}

// RemoveFile unregisters root and drops its cached index.
func (e *Engine) RemoveFile(root cst.Node) {
	if root == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files = slices.DeleteFunc(e.files, func(f cst.Node) bool { return f == root })
	delete(e.cache, root)
	if e.scratch == root {
		e.scratch = nil
	}
}

// Files returns the registered file roots.
func (e *Engine) Files() []cst.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]cst.Node(nil), e.files...)
}

// Analyze implements cst.Analyzer.
func (e *Engine) Analyze(ctx context.Context, node cst.Node, depth cst.Depth) (cst.Bindings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := cst.Root(node)
	if root == nil || root.Kind() != cst.KindFile {
		return nil, ErrDetached
	}

	b := &Bindings{
		engine: e,
		depth:  depth,
		files:  map[cst.Node]*fileIndex{root: e.index(root)},
		order:  []cst.Node{root},
	}
	if depth == cst.DepthFull {
		for _, f := range e.Files() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, ok := b.files[f]; ok {
				continue
			}
			b.files[f] = e.index(f)
			b.order = append(b.order, f)
		}
	}
	return b, nil
}

// CacheStats reports index cache hits and misses.
func (e *Engine) CacheStats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

// index returns the scope index of a file, rebuilding it when the tree was
// edited since it was cached. Trees that do not count their edits are never
// cached.
func (e *Engine) index(root cst.Node) *fileIndex {
	g, ok := root.(generational)
	if !ok {
		e.misses.Add(1)
		return e.build(root)
	}
	gen := g.Generation()

	e.mu.RLock()
	cached, hit := e.cache[root]
	e.mu.RUnlock()
	if hit && cached.generation == gen {
		e.hits.Add(1)
		return cached.idx
	}

	e.misses.Add(1)
	idx := e.build(root)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !slices.Contains(e.files, root) {
		if e.scratch != nil && e.scratch != root {
			delete(e.cache, e.scratch)
		}
		e.scratch = root
	}
	e.cache[root] = &cachedIndex{generation: gen, idx: idx}
	return idx
}

func (e *Engine) build(root cst.Node) *fileIndex {
	idx := buildIndex(root)
	e.logger.Debug("built scope index",
		slog.String("package", idx.pkg),
		slog.Int("nodes", len(idx.seq)))
	return idx
}
