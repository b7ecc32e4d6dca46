package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"economy_server/internal/logger"
)

// Dirty is the mark-dirty handle an aggregate holds. MarkDirty never blocks.
type Dirty struct {
	flag atomic.Bool
}

func (d *Dirty) MarkDirty() { d.flag.Store(true) }

func (d *Dirty) IsDirty() bool { return d.flag.Load() }

type flushEntry struct {
	name  string
	dirty *Dirty
	save  func(ctx context.Context) error
}

// Flusher saves aggregates whose Dirty handle was marked.
type Flusher struct {
	mu      sync.Mutex
	entries []*flushEntry
}

func NewFlusher() *Flusher {
	return &Flusher{}
}

// Track registers an aggregate and returns the handle it should mark.
// save is bound later with Bind, once the aggregate exists.
func (f *Flusher) Track(name string) *Dirty {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &flushEntry{name: name, dirty: &Dirty{}}
	f.entries = append(f.entries, e)
	return e.dirty
}

// Bind attaches the save function for a tracked handle.
func (f *Flusher) Bind(d *Dirty, save func(ctx context.Context) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.dirty == d {
			e.save = save
			return
		}
	}
}

// BindRepository saves snapshot() through repo whenever the handle is dirty.
func BindRepository[T any](f *Flusher, d *Dirty, repo *Repository[T], snapshot func() T) {
	f.Bind(d, func(ctx context.Context) error {
		return repo.Save(ctx, snapshot())
	})
}

// Flush saves every dirty aggregate. Failed saves stay dirty.
func (f *Flusher) Flush(ctx context.Context) error {
	f.mu.Lock()
	entries := append([]*flushEntry(nil), f.entries...)
	f.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if e.save == nil || !e.dirty.flag.CompareAndSwap(true, false) {
			continue
		}
		if err := e.save(ctx); err != nil {
			e.dirty.MarkDirty()
			errs = append(errs, fmt.Errorf("flush %s: %w", e.name, err))
			continue
		}
		logger.Debug("repository: flushed", "document", e.name)
	}
	return errors.Join(errs...)
}

// Run flushes on every tick until ctx is done.
func (f *Flusher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Flush(ctx); err != nil {
				logger.Error("repository: flush failed", "error", err)
			}
		}
	}
}
