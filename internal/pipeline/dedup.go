package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Deduplicator guards TopicStore inserts with a content-hash check.
// The mutex makes check-then-insert atomic across pipeline workers, so
// two sources carrying the same item within one run cannot both win.
type Deduplicator struct {
	mu    sync.Mutex
	store ports.TopicStore
	seen  map[string]string
}

// NewDeduplicator wraps the store for one run.
func NewDeduplicator(store ports.TopicStore) *Deduplicator {
	return &Deduplicator{store: store, seen: make(map[string]string)}
}

// Insert persists the record unless its content hash is already present
// in the store or was inserted earlier in this run. The first record
// seen for a hash wins; later ones fail with domain.ErrDuplicateContent.
func (d *Deduplicator) Insert(ctx context.Context, record domain.ContentRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.seen[record.ContentHash]; ok {
		return fmt.Errorf("%w: already stored as %s", domain.ErrDuplicateContent, id)
	}

	existing, err := d.store.GetByHash(ctx, record.ContentHash)
	switch {
	case err == nil:
		d.seen[record.ContentHash] = existing.ID
		return fmt.Errorf("%w: already stored as %s", domain.ErrDuplicateContent, existing.ID)
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("check content hash: %w", err)
	}

	if err := d.store.Insert(ctx, record); err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	d.seen[record.ContentHash] = record.ID
	return nil
}
