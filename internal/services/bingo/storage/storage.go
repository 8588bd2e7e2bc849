// Package storage defines persistence contracts for bingo catalogs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
)

// ErrNotFound indicates a requested catalog record is missing.
var ErrNotFound = errors.New("record not found")

// GoalRecord stores one goal with its canonical tag labels.
type GoalRecord struct {
	Name string
	Tags []string
}

// PoolRecord stores one pool and its goals in declaration order.
type PoolRecord struct {
	ID    string
	Goals []GoalRecord
}

// SlotRecord stores one board position; an empty PoolID is unassigned.
type SlotRecord struct {
	Position int
	PoolID   string
}

// CatalogRecord stores a whole catalog. It is always written and read as a
// unit.
type CatalogRecord struct {
	ID        string
	BoardSize int
	Pools     []PoolRecord
	Slots     []SlotRecord
	UpdatedAt time.Time
}

// CatalogStore persists catalogs.
type CatalogStore interface {
	// PutCatalog replaces any stored catalog with the same id atomically.
	PutCatalog(ctx context.Context, record CatalogRecord) error
	GetCatalog(ctx context.Context, id string) (CatalogRecord, error)
	ListCatalogIDs(ctx context.Context) ([]string, error)
	DeleteCatalog(ctx context.Context, id string) error
}

// FromCatalog converts a validated catalog into a storage record.
func FromCatalog(catalog *domain.Catalog, updatedAt time.Time) CatalogRecord {
	def := catalog.Definition()
	record := CatalogRecord{
		ID:        def.ID,
		BoardSize: catalog.BoardSize(),
		Pools:     make([]PoolRecord, 0, len(def.Pools)),
		Slots:     make([]SlotRecord, 0, len(def.Index)),
		UpdatedAt: updatedAt,
	}
	for _, pool := range def.Pools {
		poolRecord := PoolRecord{ID: string(pool.ID), Goals: make([]GoalRecord, 0, len(pool.Goals))}
		for _, goal := range pool.Goals {
			poolRecord.Goals = append(poolRecord.Goals, GoalRecord{Name: goal.Name, Tags: goal.Tags.Labels()})
		}
		record.Pools = append(record.Pools, poolRecord)
	}
	for position, ref := range def.Index {
		record.Slots = append(record.Slots, SlotRecord{Position: position, PoolID: string(ref)})
	}
	return record
}

// ToCatalog rebuilds and revalidates a catalog from a storage record.
func ToCatalog(record CatalogRecord) (*domain.Catalog, error) {
	def := domain.Definition{
		ID:    record.ID,
		Pools: make([]domain.Pool, 0, len(record.Pools)),
		Index: make([]domain.PoolID, len(record.Slots)),
	}
	for _, poolRecord := range record.Pools {
		pool := domain.Pool{ID: domain.PoolID(poolRecord.ID), Goals: make([]domain.Goal, 0, len(poolRecord.Goals))}
		for _, goalRecord := range poolRecord.Goals {
			tags, err := domain.ParseTagSet(goalRecord.Tags)
			if err != nil {
				return nil, domain.MalformedWrap(fmt.Sprintf("stored pool %q goal %q", poolRecord.ID, goalRecord.Name), err)
			}
			pool.Goals = append(pool.Goals, domain.Goal{Name: goalRecord.Name, Tags: tags})
		}
		def.Pools = append(def.Pools, pool)
	}
	for _, slot := range record.Slots {
		if slot.Position < 0 || slot.Position >= len(def.Index) {
			return nil, domain.Malformed("stored slot position %d outside %d slots", slot.Position, len(def.Index))
		}
		def.Index[slot.Position] = domain.PoolID(slot.PoolID)
	}
	return domain.New(def, domain.WithBoardSize(record.BoardSize))
}
