package domain

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDefinition() Definition {
	index := make([]PoolID, 4)
	index[0] = "keys"
	index[1] = "bosses"
	index[3] = "keys"
	return Definition{
		ID: "test",
		Pools: []Pool{
			{ID: "keys", Goals: []Goal{{Name: "Get Key"}, {Name: "Get Sun Stone"}}},
			{ID: "bosses", Goals: []Goal{{Name: "Beat Mir", Tags: NewTagSet(TagBoss)}}},
			{ID: "spare", Goals: []Goal{{Name: "Use Death Statue"}}},
		},
		Index: index,
	}
}

func mustCatalog(t *testing.T, def Definition, opts ...Option) *Catalog {
	t.Helper()
	catalog, err := New(def, opts...)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return catalog
}

func TestNewRejectsMalformedDefinitions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		opts   []Option
		reason string
	}{
		{
			name:   "empty pool",
			mutate: func(d *Definition) { d.Pools[2].Goals = nil },
			reason: `pool "spare" is empty`,
		},
		{
			name:   "empty goal name",
			mutate: func(d *Definition) { d.Pools[0].Goals[1].Name = "   " },
			reason: "empty name",
		},
		{
			name:   "undefined pool reference",
			mutate: func(d *Definition) { d.Index[2] = "getSwordOrArmor" },
			reason: `slot 2 references undefined pool "getSwordOrArmor"`,
		},
		{
			name:   "index too short",
			mutate: func(d *Definition) { d.Index = d.Index[:3] },
			reason: "index has 3 slots, want 4",
		},
		{
			name:   "index sized for the default board",
			mutate: func(d *Definition) {},
			opts:   []Option{WithBoardSize(DefaultBoardSize)},
			reason: "want 25",
		},
		{
			name:   "duplicate pool id",
			mutate: func(d *Definition) { d.Pools[2].ID = "keys" },
			reason: `duplicate pool id "keys"`,
		},
		{
			name:   "blank pool id",
			mutate: func(d *Definition) { d.Pools[1].ID = " " },
			reason: "pool 1 has no id",
		},
		{
			name:   "repeated goal name",
			mutate: func(d *Definition) { d.Pools[0].Goals[1].Name = " Get Key" },
			reason: `repeats goal "Get Key"`,
		},
		{
			name:   "non-positive board size",
			mutate: func(d *Definition) {},
			opts:   []Option{WithBoardSize(0)},
			reason: "board size must be positive",
		},
		{
			name:   "board size whose square overflows",
			mutate: func(d *Definition) { d.Index = nil },
			opts:   []Option{WithBoardSize(1 << 32)},
			reason: "exceeds maximum",
		},
		{
			name:   "board size above maximum",
			mutate: func(d *Definition) {},
			opts:   []Option{WithBoardSize(MaxBoardSize + 1)},
			reason: "board size 65 exceeds maximum 64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition()
			tt.mutate(&def)
			opts := tt.opts
			if opts == nil {
				opts = []Option{WithBoardSize(2)}
			}
			catalog, err := New(def, opts...)
			if catalog != nil {
				t.Fatal("expected no catalog on failure")
			}
			if !errors.Is(err, ErrMalformedCatalog) {
				t.Fatalf("expected ErrMalformedCatalog, got %v", err)
			}
			var malformed *MalformedCatalogError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedCatalogError, got %T", err)
			}
			if !strings.Contains(malformed.Reason, tt.reason) {
				t.Fatalf("reason = %q, want it to contain %q", malformed.Reason, tt.reason)
			}
		})
	}
}

func TestNewAllowsUnassignedSlots(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	pool, err := catalog.Slot(2)
	if err != nil {
		t.Fatalf("slot 2: %v", err)
	}
	if !pool.IsUnassigned() {
		t.Fatalf("slot 2 = %+v, want Unassigned", pool)
	}
}

func TestNewCopiesInput(t *testing.T) {
	def := testDefinition()
	catalog := mustCatalog(t, def, WithBoardSize(2))

	def.Pools[0].Goals[0].Name = "mutated"
	def.Index[0] = "spare"

	pool, err := catalog.Slot(0)
	if err != nil {
		t.Fatalf("slot 0: %v", err)
	}
	if pool.ID != "keys" || pool.Goals[0].Name != "Get Key" {
		t.Fatalf("catalog observed caller mutation: %+v", pool)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	pool, err := catalog.Pool("keys")
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	pool.Goals[0].Name = "mutated"

	again, err := catalog.Pool("keys")
	if err != nil {
		t.Fatalf("pool again: %v", err)
	}
	if again.Goals[0].Name != "Get Key" {
		t.Fatalf("pool mutated through returned copy: %+v", again)
	}
}

func TestPoolUnknown(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	_, err := catalog.Pool("missing")
	if !errors.Is(err, ErrUnknownPool) {
		t.Fatalf("expected ErrUnknownPool, got %v", err)
	}
	var unknown *UnknownPoolError
	if !errors.As(err, &unknown) || unknown.ID != "missing" {
		t.Fatalf("expected UnknownPoolError for missing, got %v", err)
	}
}

func TestSlotOutOfRange(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	for _, position := range []int{-1, 4, 100} {
		_, err := catalog.Slot(position)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("slot %d: expected ErrOutOfRange, got %v", position, err)
		}
		var outOfRange *OutOfRangeError
		if !errors.As(err, &outOfRange) || outOfRange.Position != position || outOfRange.SlotCount != 4 {
			t.Fatalf("slot %d: unexpected error detail %v", position, err)
		}
	}
}

func TestSlotsYieldsPositionOrderAndRestarts(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))
	want := []PoolID{"keys", "bosses", "", "keys"}

	for pass := 0; pass < 2; pass++ {
		var got []PoolID
		next := 0
		for position, pool := range catalog.Slots() {
			if position != next {
				t.Fatalf("pass %d: position %d, want %d", pass, position, next)
			}
			next++
			got = append(got, pool.ID)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("pass %d: slots mismatch (-want +got):\n%s", pass, diff)
		}
	}
}

func TestSlotsStopsEarly(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	visited := 0
	for range catalog.Slots() {
		visited++
		if visited == 2 {
			break
		}
	}
	if visited != 2 {
		t.Fatalf("visited = %d, want 2", visited)
	}
}

func TestPoolsKeepDeclarationOrder(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	var ids []PoolID
	for _, pool := range catalog.Pools() {
		ids = append(ids, pool.ID)
	}
	if diff := cmp.Diff([]PoolID{"keys", "bosses", "spare"}, ids); diff != "" {
		t.Fatalf("pool order mismatch (-want +got):\n%s", diff)
	}
}

func TestGoalsTagged(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	got := catalog.GoalsTagged(TagBoss)
	want := []Goal{{Name: "Beat Mir", Tags: NewTagSet(TagBoss)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tagged goals mismatch (-want +got):\n%s", diff)
	}
	if shops := catalog.GoalsTagged(TagShop); len(shops) != 0 {
		t.Fatalf("expected no shop goals, got %v", shops)
	}
}

func TestDefinitionRebuildsEqualCatalog(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	rebuilt := mustCatalog(t, catalog.Definition(), WithBoardSize(catalog.BoardSize()))
	if !catalog.Equal(rebuilt) {
		t.Fatal("expected rebuilt catalog to equal original")
	}
	if diff := cmp.Diff(catalog.Definition(), rebuilt.Definition()); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestEqualDetectsIndexChange(t *testing.T) {
	a := mustCatalog(t, testDefinition(), WithBoardSize(2))
	def := testDefinition()
	def.Index[2] = "spare"
	b := mustCatalog(t, def, WithBoardSize(2))

	if a.Equal(b) {
		t.Fatal("expected catalogs with different bindings to differ")
	}
	var nilCatalog *Catalog
	if a.Equal(nilCatalog) {
		t.Fatal("expected catalog to differ from nil")
	}
}

func TestAudit(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))

	audit := catalog.Audit()
	if audit.Clean() {
		t.Fatal("expected unreferenced pool to make the audit unclean")
	}
	if audit.Empty() {
		t.Fatal("expected findings")
	}
	if diff := cmp.Diff([]PoolID{"spare"}, audit.UnreferencedPools); diff != "" {
		t.Fatalf("unreferenced pools mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, audit.UnassignedSlots); diff != "" {
		t.Fatalf("unassigned slots mismatch (-want +got):\n%s", diff)
	}
}

func TestAuditHolesAloneAreClean(t *testing.T) {
	def := testDefinition()
	def.Pools = def.Pools[:2]
	catalog := mustCatalog(t, def, WithBoardSize(2))

	audit := catalog.Audit()
	if !audit.Clean() {
		t.Fatalf("expected clean audit, got unreferenced pools %v", audit.UnreferencedPools)
	}
	if audit.Empty() {
		t.Fatal("expected the unassigned slot to be reported")
	}
	if diff := cmp.Diff([]int{2}, audit.UnassignedSlots); diff != "" {
		t.Fatalf("unassigned slots mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentReads(t *testing.T) {
	catalog := mustCatalog(t, testDefinition(), WithBoardSize(2))
	want, err := catalog.Slot(0)
	if err != nil {
		t.Fatalf("slot 0: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := catalog.Slot(0)
				if err != nil {
					errs <- err
					return
				}
				if !got.Equal(want) {
					errs <- errors.New("slot 0 changed between reads")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestPoolContainsNormalizesName(t *testing.T) {
	pool := Pool{ID: "keys", Goals: []Goal{{Name: "Get Key"}}}
	if !pool.Contains("  Get Key ") {
		t.Fatal("expected trimmed name to match")
	}
	if pool.Contains("Get Lantern") {
		t.Fatal("unexpected match")
	}
	if Unassigned.Contains("Get Key") {
		t.Fatal("unassigned pool should contain nothing")
	}
}
