package core

import (
	"fmt"
	"log/slog"

	"github.com/encodeous/dvrouter/perf"
	"github.com/encodeous/dvrouter/state"
)

type Outcome int

const (
	Applied Outcome = iota
	Ignored
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "success"
	case Ignored:
		return "ignored"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type Result struct {
	Outcome Outcome
	Changes []Change
}

// UpdateProcessor merges advertisements received from neighbours into the routing table
type UpdateProcessor struct {
	Table      *RoutingTable
	Neighbours state.Neighbours
	Log        *slog.Logger
	// Heard is called with the sender of every advertisement that is applied
	Heard func(sender string)
}

func (p *UpdateProcessor) reject(format string, args ...any) (Result, error) {
	perf.AdvertisementsRejected.Add(1)
	return Result{Outcome: Rejected}, fmt.Errorf("%w: %s", state.ErrMalformedAdvertisement, fmt.Sprintf(format, args...))
}

// Process validates adv and relaxes the table with every route it carries. Nothing is modified unless
// the whole advertisement is valid and comes from a neighbour.
func (p *UpdateProcessor) Process(adv state.Advertisement) (Result, error) {
	perf.AdvertisementsReceived.Add(1)
	if adv.SenderAddress == "" {
		return p.reject("missing sender_address")
	}
	if adv.RoutingTable == nil {
		return p.reject("missing routing_table")
	}

	linkCost, ok := p.Neighbours[adv.SenderAddress]
	if !ok {
		perf.AdvertisementsIgnored.Add(1)
		p.Log.Warn("ignoring advertisement from unknown sender", "sender", adv.SenderAddress)
		return Result{Outcome: Ignored}, state.ErrUnknownSender
	}

	candidates := make(state.Table, len(adv.RoutingTable))
	for dst, route := range adv.RoutingTable {
		if dst == "" {
			return p.reject("empty destination")
		}
		if route.Cost < 0 {
			return p.reject("negative cost %d for %s", route.Cost, dst)
		}
		// keys masking to the same prefix keep the cheapest route
		dst = dst.Canonical()
		cost := state.AddCost(linkCost, route.Cost)
		if prev, dup := candidates[dst]; dup && prev.Cost <= cost {
			continue
		}
		candidates[dst] = state.Route{
			Cost:    cost,
			NextHop: adv.SenderAddress,
		}
	}

	if p.Heard != nil {
		p.Heard(adv.SenderAddress)
	}
	changes := p.Table.MergeAll(adv.SenderAddress, candidates)
	if len(changes) != 0 {
		perf.RouteChanges.Add(float64(len(changes)))
		p.Log.Info("routing table updated", "from", adv.SenderAddress, "changes", len(changes))
		for _, c := range changes {
			p.Log.Debug("route changed", "change", c.String())
		}
		if state.DBG_log_table {
			p.Log.Debug("new routing table\n" + p.Table.Snapshot().String())
		}
	}
	return Result{Outcome: Applied, Changes: changes}, nil
}
