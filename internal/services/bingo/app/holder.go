package app

import (
	"errors"
	"sync/atomic"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
)

// Holder publishes the current catalog to concurrent readers.
//
// Readers call Load and keep the returned catalog for as long as they need a
// consistent view; a reload never mutates a catalog that was already handed
// out.
type Holder struct {
	current atomic.Pointer[domain.Catalog]
	version atomic.Uint64
}

// NewHolder returns a holder that starts with catalog.
func NewHolder(catalog *domain.Catalog) (*Holder, error) {
	h := &Holder{}
	if err := h.Replace(catalog); err != nil {
		return nil, err
	}
	return h, nil
}

// Load returns the current catalog.
func (h *Holder) Load() *domain.Catalog {
	if h == nil {
		return nil
	}
	return h.current.Load()
}

// Replace swaps in a new catalog.
func (h *Holder) Replace(catalog *domain.Catalog) error {
	if h == nil {
		return errors.New("catalog holder is nil")
	}
	if catalog == nil {
		return errors.New("catalog is required")
	}
	h.current.Store(catalog)
	h.version.Add(1)
	return nil
}

// Version counts successful replacements, starting at 1 for the initial catalog.
func (h *Holder) Version() uint64 {
	if h == nil {
		return 0
	}
	return h.version.Load()
}
