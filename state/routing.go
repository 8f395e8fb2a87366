package state

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

// Destination is a routing table key. It is either a CIDR network prefix or, for the entries
// created at bootstrap for directly connected neighbours, a neighbour address (host:port).
type Destination string

// Prefix reports whether the destination is a network prefix, returning it in masked form.
func (d Destination) Prefix() (netip.Prefix, bool) {
	p, err := netip.ParsePrefix(string(d))
	if err != nil {
		return netip.Prefix{}, false
	}
	return p.Masked(), true
}

// Canonical returns the masked form of a prefix destination, and the destination unchanged otherwise.
func (d Destination) Canonical() Destination {
	if p, ok := d.Prefix(); ok {
		return Destination(p.String())
	}
	return d
}

type Route struct {
	Cost    int    `json:"cost"`
	NextHop string `json:"next_hop"`
}

func (r Route) String() string {
	if r.Cost >= Infinity {
		return fmt.Sprintf("(nh: %s, cost: inf)", r.NextHop)
	}
	return fmt.Sprintf("(nh: %s, cost: %d)", r.NextHop, r.Cost)
}

// UnmarshalJSON reads a route from an advertisement. A route without a cost is unreachable.
func (r *Route) UnmarshalJSON(data []byte) error {
	var wire struct {
		Cost    *int   `json:"cost"`
		NextHop string `json:"next_hop"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.NextHop = wire.NextHop
	r.Cost = Infinity
	if wire.Cost != nil {
		r.Cost = *wire.Cost
	}
	return nil
}

type Table map[Destination]Route

func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Destinations returns the keys of the table in sorted order
func (t Table) Destinations() []Destination {
	return slices.Sorted(maps.Keys(t))
}

func (t Table) String() string {
	sb := strings.Builder{}
	for i, dst := range t.Destinations() {
		if i != 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s via %s", dst, t[dst]))
	}
	return sb.String()
}

// Neighbours maps a neighbour address to the cost of the direct link to it.
type Neighbours map[string]int

func (n Neighbours) Addresses() []string {
	return slices.Sorted(maps.Keys(n))
}

// Advertisement is the message a node sends to each neighbour every interval.
type Advertisement struct {
	SenderAddress string `json:"sender_address"`
	RoutingTable  Table  `json:"routing_table"`
}

// AddCost adds two costs, clamping the result to Infinity
func AddCost(a, b int) int {
	if a >= Infinity || b >= Infinity {
		return Infinity
	}
	return min(Infinity, a+b)
}
