package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlusherSavesOnlyDirty(t *testing.T) {
	ctx := context.Background()
	f := NewFlusher()

	var saves []string
	a := f.Track("a")
	b := f.Track("b")
	f.Bind(a, func(context.Context) error { saves = append(saves, "a"); return nil })
	f.Bind(b, func(context.Context) error { saves = append(saves, "b"); return nil })

	require.NoError(t, f.Flush(ctx))
	assert.Empty(t, saves)

	b.MarkDirty()
	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, []string{"b"}, saves)
	assert.False(t, b.IsDirty())

	require.NoError(t, f.Flush(ctx))
	assert.Equal(t, []string{"b"}, saves)
}

func TestFlusherKeepsFailedDirty(t *testing.T) {
	f := NewFlusher()
	d := f.Track("flaky")
	fail := true
	f.Bind(d, func(context.Context) error {
		if fail {
			return errors.New("store offline")
		}
		return nil
	})

	d.MarkDirty()
	require.Error(t, f.Flush(context.Background()))
	assert.True(t, d.IsDirty())

	fail = false
	require.NoError(t, f.Flush(context.Background()))
	assert.False(t, d.IsDirty())
}

func TestBindRepositoryWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository[map[string]int](store, "counters")
	f := NewFlusher()

	state := map[string]int{"sales": 3}
	d := f.Track(repo.Name())
	BindRepository(f, d, repo, func() map[string]int { return state })

	d.MarkDirty()
	require.NoError(t, f.Flush(ctx))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got["sales"])
}

func TestFlusherRunStopsWithContext(t *testing.T) {
	f := NewFlusher()
	d := f.Track("tick")
	flushed := make(chan struct{}, 1)
	f.Bind(d, func(context.Context) error {
		select {
		case flushed <- struct{}{}:
		default:
		}
		return nil
	})
	d.MarkDirty()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("flusher never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flusher did not stop")
	}
}
