package core

import (
	"net"
	"net/netip"

	"github.com/cilium/cilium/pkg/ip"
	"github.com/encodeous/dvrouter/state"
	"github.com/gaissmai/bart"
)

// coalesce merges aligned siblings and absorbs contained prefixes, returning the covering prefixes of
// both families.
func coalesce(prefixes []netip.Prefix) []netip.Prefix {
	nets := make([]*net.IPNet, len(prefixes))
	for i, p := range prefixes {
		nets[i] = &net.IPNet{
			IP:   p.Addr().AsSlice(),
			Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
		}
	}
	v4, v6 := ip.CoalesceCIDRs(nets)

	covers := make([]netip.Prefix, 0, len(v4)+len(v6))
	for _, n := range append(v4, v6...) {
		addr, ok := netip.AddrFromSlice(n.IP)
		if !ok {
			continue
		}
		ones, bits := n.Mask.Size()
		// v4 results may come back in 16 byte form
		if addr.Is4In6() && bits == 8*net.IPv6len {
			ones -= 96
		}
		covers = append(covers, netip.PrefixFrom(addr.Unmap(), ones))
	}
	return covers
}

// Summarize aggregates the network prefixes of a table into the fewest covering prefixes.
//
// Each covering prefix carries the cheapest route among the prefixes it covers. When several
// covered prefixes share that cost, the first one in CIDR order wins, so distinct next hops
// under one covering prefix collapse to a single one. Destinations that are not network
// prefixes are left out of the result.
func Summarize(table state.Table) state.Table {
	members := new(bart.Table[state.Route])
	prefixes := make([]netip.Prefix, 0, len(table))
	for _, dst := range table.Destinations() {
		p, ok := dst.Prefix()
		if !ok {
			continue
		}
		route := table[dst]
		if old, dup := members.Get(p); dup && old.Cost <= route.Cost {
			continue
		}
		members.Insert(p, route)
		prefixes = append(prefixes, p)
	}

	out := make(state.Table)
	for _, cover := range coalesce(prefixes) {
		best, found := members.Get(cover)
		for p, route := range members.Subnets(cover) {
			if p == cover {
				continue
			}
			if !found || route.Cost < best.Cost {
				best, found = route, true
			}
		}
		if !found {
			continue
		}
		out[state.Destination(cover.String())] = best
	}
	return out
}
