package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niksmo/shopcore/internal/core/port"
)

type line interface {
	LineID() string
}

type codec[L line] interface {
	encode([]L) (string, error)
	decode(string) ([]L, error)
	sanitize([]L) []L
}

// A collection is an ordered, id keyed set of lines mirrored to storage.
//
// A mutation commits to memory and encodes a versioned snapshot under
// the write lock, then persists it after the lock is released.
type collection[L line] struct {
	opPrefix  string
	key       string
	storage   port.KeyValueStorage
	codec     codec[L]
	persister *persister

	initMu sync.Mutex
	loaded bool

	mu      sync.RWMutex
	lines   []L
	index   map[string]int
	version uint64
}

func newCollection[L line](
	opPrefix, key string, s port.KeyValueStorage, c codec[L], opts []Option,
) *collection[L] {
	return &collection[L]{
		opPrefix:  opPrefix,
		key:       key,
		storage:   s,
		codec:     c,
		persister: newPersister(opPrefix, key, s, applyOptions(opts)),
		index:     make(map[string]int),
	}
}

// initialize loads the persisted collection once.
//
// Missing or malformed data leaves the collection empty. A read
// interrupted by a context error is not final: the collection stays
// unloaded, the error is returned and the next call reads again.
// The caller's cancellation never reaches the storage read.
func (c *collection[L]) initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.loaded {
		return nil
	}

	lines, err := c.load(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.lines = lines
	c.reindex()
	c.mu.Unlock()
	c.loaded = true
	return nil
}

// load returns an error only for interrupted reads.
func (c *collection[L]) load(ctx context.Context) ([]L, error) {
	const op = "load"
	log := slog.With("op", makeOp(c.opPrefix, op), "key", c.key)

	data, err := c.storage.Get(ctx, c.key)
	switch {
	case err == nil:
	case errors.Is(err, port.ErrKeyNotFound):
		log.Info("nothing persisted, starting empty")
		return nil, nil
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		log.Warn("collection read interrupted", "err", err)
		return nil, fmt.Errorf("%s: %w", makeOp(c.opPrefix, op), err)
	default:
		log.Warn("failed to read collection, starting empty", "err", err)
		return nil, nil
	}

	lines, err := c.codec.decode(data)
	if err != nil {
		log.Warn("malformed collection, starting empty", "err", err)
		return nil, nil
	}

	lines = c.codec.sanitize(lines)
	log.Info("collection loaded", "nLines", len(lines))
	return lines, nil
}

// mutate applies fn to the lines under the write lock.
//
// fn owns the passed slice and reports whether it changed anything.
// Unchanged collections are not persisted.
func (c *collection[L]) mutate(
	ctx context.Context, fn func([]L) ([]L, bool, error),
) error {
	const op = "mutate"
	if err := c.initialize(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	lines, changed, err := fn(c.lines)
	if err != nil || !changed {
		c.mu.Unlock()
		return err
	}
	c.lines = lines
	c.reindex()
	c.version++
	s := snapshot{version: c.version}
	data, encErr := c.codec.encode(c.lines)
	c.mu.Unlock()

	if encErr != nil {
		slog.Error("failed to encode collection",
			"op", makeOp(c.opPrefix, op), "err", encErr)
		return nil
	}
	s.data = data
	c.persister.save(context.WithoutCancel(ctx), s)
	return nil
}

func (c *collection[L]) reindex() {
	clear(c.index)
	for i, l := range c.lines {
		c.index[l.LineID()] = i
	}
}

func (c *collection[L]) list(ctx context.Context) []L {
	_ = c.initialize(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]L, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *collection[L]) contains(ctx context.Context, id string) bool {
	_ = c.initialize(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[id]
	return ok
}

// read calls fn with the lines under the read lock; fn must not keep them.
func (c *collection[L]) read(ctx context.Context, fn func([]L)) {
	_ = c.initialize(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.lines)
}

// position returns the index of the line, it must be called under lock.
func (c *collection[L]) position(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

func (c *collection[L]) close(ctx context.Context) error {
	return c.persister.close(ctx)
}

func removeAt[L any](lines []L, i int) []L {
	out := make([]L, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	return append(out, lines[i+1:]...)
}
