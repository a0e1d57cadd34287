package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/niksmo/shopcore/pkg/retry"
)

// A snapshot is an encoded collection state.
//
// Versions grow with every committed mutation of a store.
type snapshot struct {
	version uint64
	data    string
}

// A persister writes snapshots of a single storage key.
//
// Writes are serialized and a snapshot older than the last written one
// is dropped, so the stored value never goes back in time.
// In async mode a single writer goroutine coalesces pending snapshots
// to the latest one.
type persister struct {
	opPrefix string
	key      string
	storage  port.KeyValueStorage
	retryCfg retry.Config

	writeMu sync.Mutex
	written uint64

	async   bool
	mu      sync.Mutex
	closed  bool
	latest  snapshot
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newPersister(
	opPrefix, key string, s port.KeyValueStorage, o options,
) *persister {
	p := &persister{
		opPrefix: opPrefix,
		key:      key,
		storage:  s,
		retryCfg: o.retryCfg,
		async:    o.async,
	}
	if p.async {
		p.wake = make(chan struct{}, 1)
		p.done = make(chan struct{})
		p.stopped = make(chan struct{})
		go p.run()
	}
	return p
}

func (p *persister) save(ctx context.Context, s snapshot) {
	if p.async && p.enqueue(s) {
		return
	}
	p.write(ctx, s)
}

// enqueue hands the snapshot to the writer goroutine,
// it reports false once the persister is closed.
func (p *persister) enqueue(s snapshot) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	if s.version > p.latest.version {
		p.latest = s
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return true
}

func (p *persister) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.writeLatest()
		case <-p.done:
			p.writeLatest()
			return
		}
	}
}

func (p *persister) writeLatest() {
	p.mu.Lock()
	s := p.latest
	p.mu.Unlock()
	p.write(context.Background(), s)
}

func (p *persister) write(ctx context.Context, s snapshot) {
	const op = "write"
	log := slog.With("op", makeOp(p.opPrefix, op), "key", p.key)

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if s.version <= p.written {
		return
	}
	p.written = s.version

	err := retry.Do(ctx, p.retryCfg, func() error {
		return p.storage.Set(ctx, p.key, s.data)
	})
	if err != nil {
		log.Error("failed to persist collection",
			"version", s.version, "err", err)
		return
	}
	log.Debug("collection persisted", "version", s.version)
}

// close stops the async writer after it has written the latest snapshot.
func (p *persister) close(ctx context.Context) error {
	if !p.async {
		return nil
	}

	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
