package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"economy_server/internal/logger"
)

// Repository loads and saves one named aggregate of type T as JSON.
type Repository[T any] struct {
	store DocumentStore
	name  string
}

func NewRepository[T any](store DocumentStore, name string) *Repository[T] {
	return &Repository[T]{store: store, name: name}
}

func (r *Repository[T]) Name() string { return r.name }

// Load returns the stored aggregate, or the zero value if none was saved.
func (r *Repository[T]) Load(ctx context.Context) (T, error) {
	var doc T
	body, err := r.store.Load(ctx, r.name)
	if errors.Is(err, ErrDocumentNotFound) {
		return doc, nil
	}
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return doc, nil
}

// LoadOrEmpty is Load with failures logged and replaced by an empty aggregate.
func (r *Repository[T]) LoadOrEmpty(ctx context.Context) T {
	doc, err := r.Load(ctx)
	if err != nil {
		logger.Warn("repository: load failed, starting empty", "document", r.name, "error", err)
		var zero T
		return zero
	}
	return doc
}

func (r *Repository[T]) Save(ctx context.Context, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.name, err)
	}
	return r.store.Save(ctx, r.name, body)
}
