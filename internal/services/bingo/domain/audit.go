package domain

// Audit lists data-integrity observations that are legal but worth a human
// look: pools no slot can draw from and positions with no pool.
type Audit struct {
	UnreferencedPools []PoolID
	UnassignedSlots   []int
}

// Clean reports whether every pool is reachable from the index. Unassigned
// slots are deliberate holes and never make an audit unclean.
func (a Audit) Clean() bool {
	return len(a.UnreferencedPools) == 0
}

// Empty reports whether the audit has no observations at all.
func (a Audit) Empty() bool {
	return a.Clean() && len(a.UnassignedSlots) == 0
}

// Audit inspects the catalog. Unassigned slots are reported, never rejected.
func (c *Catalog) Audit() Audit {
	referenced := make(map[PoolID]struct{}, len(c.pools))
	var audit Audit
	for position, ref := range c.index {
		if ref == "" {
			audit.UnassignedSlots = append(audit.UnassignedSlots, position)
			continue
		}
		referenced[ref] = struct{}{}
	}
	for _, id := range c.order {
		if _, ok := referenced[id]; !ok {
			audit.UnreferencedPools = append(audit.UnreferencedPools, id)
		}
	}
	return audit
}
