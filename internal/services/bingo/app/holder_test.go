package app

import (
	"sync"
	"testing"

	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/content"
	"github.com/louisbranch/landstalker-bingo/internal/services/bingo/domain"
)

func TestHolderReplaceSwapsWholeCatalog(t *testing.T) {
	first := mustLandstalker(t)
	holder, err := NewHolder(first)
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	if holder.Load() != first || holder.Version() != 1 {
		t.Fatalf("expected initial catalog at version 1, got version %d", holder.Version())
	}

	second := miniCatalog(t, "mini")
	if err := holder.Replace(second); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if holder.Load() != second || holder.Version() != 2 {
		t.Fatalf("expected replaced catalog at version 2, got version %d", holder.Version())
	}

	// The previously loaded catalog is untouched.
	pool, err := first.Slot(0)
	if err != nil {
		t.Fatalf("slot 0: %v", err)
	}
	if pool.ID != "key_items" {
		t.Fatalf("old catalog changed, slot 0 = %q", pool.ID)
	}
}

func TestHolderRejectsNil(t *testing.T) {
	if _, err := NewHolder(nil); err == nil {
		t.Fatal("expected nil catalog error")
	}
	holder, err := NewHolder(mustLandstalker(t))
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	if err := holder.Replace(nil); err == nil {
		t.Fatal("expected nil replace error")
	}
	if holder.Load() == nil {
		t.Fatal("failed replace dropped the catalog")
	}

	var nilHolder *Holder
	if nilHolder.Load() != nil || nilHolder.Version() != 0 {
		t.Fatal("nil holder should read as empty")
	}
	if err := nilHolder.Replace(mustLandstalker(t)); err == nil {
		t.Fatal("expected nil holder error")
	}
}

func TestHolderConcurrentReadersDuringReplace(t *testing.T) {
	a := mustLandstalker(t)
	b := miniCatalog(t, "mini")
	holder, err := NewHolder(a)
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				catalog := holder.Load()
				if catalog != a && catalog != b {
					t.Errorf("reader saw unexpected catalog %p", catalog)
					return
				}
				if _, err := catalog.Slot(0); err != nil {
					t.Errorf("slot 0: %v", err)
					return
				}
			}
		}()
	}
	for i := range 100 {
		next := a
		if i%2 == 0 {
			next = b
		}
		if err := holder.Replace(next); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}
	wg.Wait()
}

func mustLandstalker(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := content.Landstalker()
	if err != nil {
		t.Fatalf("load landstalker: %v", err)
	}
	return catalog
}

func miniCatalog(t *testing.T, id string) *domain.Catalog {
	t.Helper()
	catalog, err := domain.New(domain.Definition{
		ID: id,
		Pools: []domain.Pool{
			{ID: "only", Goals: []domain.Goal{{Name: "Do the thing"}}},
		},
		Index: []domain.PoolID{"only"},
	}, domain.WithBoardSize(1))
	if err != nil {
		t.Fatalf("build mini catalog: %v", err)
	}
	return catalog
}
