package core

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/encodeous/dvrouter/state"
	"github.com/gaissmai/bart"
)

// Change describes one entry modified by a merge
type Change struct {
	Destination state.Destination
	Added       bool
	Old         state.Route
	New         state.Route
}

func (c Change) String() string {
	if c.Added {
		return fmt.Sprintf("%s added %s", c.Destination, c.New)
	}
	return fmt.Sprintf("%s %s -> %s", c.Destination, c.Old, c.New)
}

// RoutingTable is the only owner of the node's routes. Every read and write takes the same lock,
// so a snapshot never observes part of an advertisement being merged.
type RoutingTable struct {
	mu           sync.Mutex
	self         string
	bootstrapped bool
	entries      state.Table
	// index holds the prefix shaped destinations for longest prefix matching
	index *bart.Table[state.Destination]
}

func NewRoutingTable(self string) *RoutingTable {
	return &RoutingTable{
		self:    self,
		entries: make(state.Table),
		index:   new(bart.Table[state.Destination]),
	}
}

// Bootstrap installs the administered network at cost 0 and one entry per neighbour at its link cost.
func (t *RoutingTable) Bootstrap(network string, neighbours state.Neighbours) error {
	if err := state.NetworkValidator(network); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bootstrapped {
		return state.ErrAlreadyBootstrapped
	}
	t.bootstrapped = true
	t.set(state.Destination(network).Canonical(), state.Route{Cost: 0, NextHop: t.self})
	for addr, cost := range neighbours {
		t.set(state.Destination(addr), state.Route{Cost: min(cost, state.Infinity), NextHop: addr})
	}
	return nil
}

func (t *RoutingTable) set(dst state.Destination, route state.Route) {
	if _, ok := t.entries[dst]; !ok {
		if p, isPrefix := dst.Prefix(); isPrefix {
			t.index.Insert(p, dst)
		}
	}
	t.entries[dst] = route
}

// Snapshot returns a copy of the table that shares nothing with the live state
func (t *RoutingTable) Snapshot() state.Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Clone()
}

func (t *RoutingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Merge relaxes a single destination towards a candidate route, reporting whether the entry changed.
func (t *RoutingTable) Merge(dst state.Destination, cost int, nextHop string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, changed := t.merge(dst.Canonical(), cost, nextHop)
	return changed
}

// MergeAll relaxes every candidate learned through nextHop while holding the lock once.
// candidates must already carry the total cost through nextHop.
func (t *RoutingTable) MergeAll(nextHop string, candidates state.Table) []Change {
	t.mu.Lock()
	defer t.mu.Unlock()
	changes := make([]Change, 0)
	for _, dst := range candidates.Destinations() {
		change, changed := t.merge(dst.Canonical(), candidates[dst].Cost, nextHop)
		if changed {
			changes = append(changes, change)
		}
	}
	return changes
}

func (t *RoutingTable) merge(dst state.Destination, cost int, nextHop string) (Change, bool) {
	// neighbours advertise their entry for us, we never route to ourselves through them
	if dst == state.Destination(t.self) {
		return Change{}, false
	}
	cur, known := t.entries[dst]
	next, changed := relax(cur, known, cost, nextHop)
	if !changed {
		return Change{}, false
	}
	t.set(dst, next)
	return Change{
		Destination: dst,
		Added:       !known,
		Old:         cur,
		New:         next,
	}, true
}

// relax is the Bellman-Ford step. A strictly cheaper candidate replaces the current route, and the
// current next hop is always believed, even when its cost got worse.
func relax(cur state.Route, known bool, cost int, nextHop string) (state.Route, bool) {
	candidate := state.Route{Cost: min(cost, state.Infinity), NextHop: nextHop}
	switch {
	case !known:
		return candidate, true
	case candidate.Cost < cur.Cost:
		return candidate, true
	case cur.NextHop == nextHop:
		return candidate, candidate != cur
	}
	return cur, false
}

// Lookup finds the most specific network prefix in the table containing addr
func (t *RoutingTable) Lookup(addr netip.Addr) (netip.Prefix, state.Route, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	lpm, dst, ok := t.index.LookupPrefixLPM(netip.PrefixFrom(addr, addr.BitLen()))
	if !ok {
		return netip.Prefix{}, state.Route{}, false
	}
	return lpm, t.entries[dst], true
}
