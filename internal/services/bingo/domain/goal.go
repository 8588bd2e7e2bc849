package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Goal is one objective a player can mark off on a bingo board.
type Goal struct {
	Name string
	Tags TagSet
}

// HasTag reports whether the goal carries tag.
func (g Goal) HasTag(tag Tag) bool {
	return g.Tags.Has(tag)
}

// PoolID names a pool for index references.
type PoolID string

// Pool is an ordered group of goals sharing a theme.
type Pool struct {
	ID    PoolID
	Goals []Goal
}

// Unassigned is returned for board positions intentionally left without a
// pool. It is the zero Pool.
var Unassigned = Pool{}

// IsUnassigned reports whether p is the Unassigned sentinel.
func (p Pool) IsUnassigned() bool {
	return p.ID == "" && len(p.Goals) == 0
}

// Equal reports whether p and other hold the same id and goals in order.
func (p Pool) Equal(other Pool) bool {
	return p.ID == other.ID && slices.Equal(p.Goals, other.Goals)
}

// Contains reports whether the pool has a goal with the given name.
func (p Pool) Contains(name string) bool {
	target := normalizeName(name)
	for _, goal := range p.Goals {
		if goal.Name == target {
			return true
		}
	}
	return false
}

func (p Pool) clone() Pool {
	return Pool{ID: p.ID, Goals: slices.Clone(p.Goals)}
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
