// Package domain defines the bingo goal catalog: themed goal pools and the
// board index that binds each cell to a pool.
//
// A Catalog is validated once by New and never mutated afterwards, so any
// number of goroutines may read it without locking. Callers that need to swap
// catalogs at runtime replace the whole *Catalog pointer.
package domain

import (
	"iter"
	"slices"
	"strings"
)

// DefaultBoardSize is the side length of the standard 5x5 board.
const DefaultBoardSize = 5

// MaxBoardSize bounds the board side length so size*size cannot overflow.
const MaxBoardSize = 64

// Definition is the raw input to New.
//
// An empty PoolID in Index marks an intentionally unassigned slot.
type Definition struct {
	ID    string
	Pools []Pool
	Index []PoolID
}

// Option configures catalog construction.
type Option func(*options)

type options struct {
	boardSize int
}

// WithBoardSize sets the board side length; the index must hold size*size slots.
func WithBoardSize(size int) Option {
	return func(o *options) {
		o.boardSize = size
	}
}

// Catalog is an immutable registry of goal pools plus the slot index.
type Catalog struct {
	id        string
	boardSize int
	pools     map[PoolID]Pool
	order     []PoolID
	index     []PoolID
}

// New validates def and builds a Catalog from a deep copy of it.
//
// It fails with *MalformedCatalogError when a pool is empty, a goal name is
// empty or repeated within its pool, a pool id is empty or duplicated, an
// index slot references an undefined pool, or the index length does not match
// the board. No partially built catalog is ever returned.
func New(def Definition, opts ...Option) (*Catalog, error) {
	o := options{boardSize: DefaultBoardSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.boardSize <= 0 {
		return nil, Malformed("board size must be positive, got %d", o.boardSize)
	}
	if o.boardSize > MaxBoardSize {
		return nil, Malformed("board size %d exceeds maximum %d", o.boardSize, MaxBoardSize)
	}

	pools := make(map[PoolID]Pool, len(def.Pools))
	order := make([]PoolID, 0, len(def.Pools))
	for i, raw := range def.Pools {
		id := PoolID(strings.TrimSpace(string(raw.ID)))
		if id == "" {
			return nil, Malformed("pool %d has no id", i)
		}
		if _, exists := pools[id]; exists {
			return nil, Malformed("duplicate pool id %q", id)
		}
		if len(raw.Goals) == 0 {
			return nil, Malformed("pool %q is empty", id)
		}
		goals := make([]Goal, 0, len(raw.Goals))
		seen := make(map[string]struct{}, len(raw.Goals))
		for j, rawGoal := range raw.Goals {
			name := normalizeName(rawGoal.Name)
			if name == "" {
				return nil, Malformed("pool %q goal %d has an empty name", id, j)
			}
			if _, dup := seen[name]; dup {
				return nil, Malformed("pool %q repeats goal %q", id, name)
			}
			seen[name] = struct{}{}
			goals = append(goals, Goal{Name: name, Tags: rawGoal.Tags})
		}
		pools[id] = Pool{ID: id, Goals: goals}
		order = append(order, id)
	}

	slotCount := o.boardSize * o.boardSize
	if len(def.Index) != slotCount {
		return nil, Malformed("index has %d slots, want %d for a %dx%d board", len(def.Index), slotCount, o.boardSize, o.boardSize)
	}
	index := make([]PoolID, slotCount)
	for position, raw := range def.Index {
		ref := PoolID(strings.TrimSpace(string(raw)))
		if ref == "" {
			continue
		}
		if _, ok := pools[ref]; !ok {
			return nil, Malformed("slot %d references undefined pool %q", position, ref)
		}
		index[position] = ref
	}

	return &Catalog{
		id:        strings.TrimSpace(def.ID),
		boardSize: o.boardSize,
		pools:     pools,
		order:     order,
		index:     index,
	}, nil
}

// ID returns the catalog identifier, which may be empty.
func (c *Catalog) ID() string {
	return c.id
}

// BoardSize returns the board side length.
func (c *Catalog) BoardSize() int {
	return c.boardSize
}

// SlotCount returns the number of board positions.
func (c *Catalog) SlotCount() int {
	return len(c.index)
}

// Pool returns a copy of the pool with the given id.
func (c *Catalog) Pool(id PoolID) (Pool, error) {
	pool, ok := c.pools[id]
	if !ok {
		return Pool{}, &UnknownPoolError{ID: id}
	}
	return pool.clone(), nil
}

// Slot returns the pool bound to position, or Unassigned for a hole.
func (c *Catalog) Slot(position int) (Pool, error) {
	if position < 0 || position >= len(c.index) {
		return Pool{}, &OutOfRangeError{Position: position, SlotCount: len(c.index)}
	}
	ref := c.index[position]
	if ref == "" {
		return Unassigned, nil
	}
	return c.pools[ref].clone(), nil
}

// Slots yields every (position, pool) pair in position order. Holes yield
// Unassigned. The sequence may be ranged over any number of times.
func (c *Catalog) Slots() iter.Seq2[int, Pool] {
	return func(yield func(int, Pool) bool) {
		for position, ref := range c.index {
			pool := Unassigned
			if ref != "" {
				pool = c.pools[ref].clone()
			}
			if !yield(position, pool) {
				return
			}
		}
	}
}

// Pools returns copies of all pools in declaration order.
func (c *Catalog) Pools() []Pool {
	out := make([]Pool, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.pools[id].clone())
	}
	return out
}

// GoalsTagged returns every goal carrying tag, by pool declaration order.
func (c *Catalog) GoalsTagged(tag Tag) []Goal {
	var out []Goal
	for _, id := range c.order {
		for _, goal := range c.pools[id].Goals {
			if goal.HasTag(tag) {
				out = append(out, goal)
			}
		}
	}
	return out
}

// Definition returns a deep copy of the catalog contents suitable for
// serialization or for building an equal catalog with New.
func (c *Catalog) Definition() Definition {
	return Definition{
		ID:    c.id,
		Pools: c.Pools(),
		Index: slices.Clone(c.index),
	}
}

// Equal reports whether both catalogs bind the same pools to the same slots.
func (c *Catalog) Equal(other *Catalog) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.id != other.id || c.boardSize != other.boardSize {
		return false
	}
	if !slices.Equal(c.order, other.order) || !slices.Equal(c.index, other.index) {
		return false
	}
	for _, id := range c.order {
		if !c.pools[id].Equal(other.pools[id]) {
			return false
		}
	}
	return true
}
