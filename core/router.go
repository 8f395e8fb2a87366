package core

import (
	"time"

	"github.com/encodeous/dvrouter/state"
	"github.com/jellydator/ttlcache/v3"
)

type Router struct {
	*state.State
	Table      *RoutingTable
	Advertiser *Advertiser
	Processor  *UpdateProcessor
	// Liveness remembers when each neighbour last sent us an advertisement. It is diagnostic only:
	// a silent neighbour keeps its routes.
	Liveness *ttlcache.Cache[string, time.Time]
	// Sender overrides the HTTP sender when set before Init
	Sender Sender
}

func (r *Router) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.State = s
	r.Table = NewRoutingTable(s.Address())
	err := r.Table.Bootstrap(s.Network, s.Neighbours)
	if err != nil {
		return err
	}

	r.Liveness = ttlcache.New[string, time.Time](
		ttlcache.WithTTL[string, time.Time](s.Interval()*time.Duration(state.LivenessIntervals)),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)

	if r.Sender == nil {
		r.Sender = NewHTTPSender(state.SendTimeout)
	}
	r.Processor = &UpdateProcessor{
		Table:      r.Table,
		Neighbours: s.Neighbours,
		Log:        s.Log.WithGroup("update"),
		Heard: func(sender string) {
			r.Liveness.Set(sender, time.Now(), ttlcache.DefaultTTL)
		},
	}
	r.Advertiser = &Advertiser{
		Self:       s.Address(),
		Table:      r.Table,
		Neighbours: s.Neighbours,
		Summarize:  s.Summarize,
		Sender:     r.Sender,
		Timeout:    state.SendTimeout,
		Log:        s.Log.WithGroup("advertise"),
	}

	s.Log.Info("initial routing table\n" + r.Table.Snapshot().String())

	s.Log.Debug("schedule router tasks")
	s.RepeatTask(func(e *state.Env) error {
		if state.DBG_log_advertisements {
			e.Log.Debug("sending periodic advertisements", "neighbours", len(e.Neighbours))
		}
		r.Advertiser.Advertise(e.Context)
		return nil
	}, s.Interval())
	s.RepeatTask(func(e *state.Env) error {
		r.Liveness.DeleteExpired()
		return nil
	}, s.Interval())
	return nil
}

func (r *Router) Cleanup(s *state.State) error {
	return nil
}

type NeighbourLiveness struct {
	Cost      int        `json:"cost"`
	Alive     bool       `json:"alive"`
	LastHeard *time.Time `json:"last_heard,omitempty"`
}

// Inspection is the diagnostic view of a node served on /routes
type Inspection struct {
	Address        string                       `json:"address"`
	Network        string                       `json:"network"`
	Neighbours     state.Neighbours             `json:"neighbours"`
	UpdateInterval int                          `json:"update_interval"`
	Summarize      bool                         `json:"summarize"`
	RoutingTable   state.Table                  `json:"routing_table"`
	Liveness       map[string]NeighbourLiveness `json:"neighbour_liveness"`
}

func (r *Router) Inspect() Inspection {
	liveness := make(map[string]NeighbourLiveness, len(r.Neighbours))
	for addr, cost := range r.Neighbours {
		nl := NeighbourLiveness{Cost: cost}
		if item := r.Liveness.Get(addr); item != nil && !item.IsExpired() {
			heard := item.Value()
			nl.Alive = true
			nl.LastHeard = &heard
		}
		liveness[addr] = nl
	}
	return Inspection{
		Address:        r.Address(),
		Network:        r.Network,
		Neighbours:     r.Neighbours,
		UpdateInterval: r.IntervalSec,
		Summarize:      r.Summarize,
		RoutingTable:   r.Table.Snapshot(),
		Liveness:       liveness,
	}
}
