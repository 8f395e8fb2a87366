package core

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/dvrouter/perf"
	"github.com/encodeous/dvrouter/state"
)

// Sender delivers an advertisement to one neighbour. Implementations must honour ctx.
type Sender interface {
	Send(ctx context.Context, neighbour string, adv state.Advertisement) error
}

type Advertiser struct {
	Self       string
	Table      *RoutingTable
	Neighbours state.Neighbours
	Summarize  bool
	Sender     Sender
	Timeout    time.Duration
	Log        *slog.Logger
}

// PoisonReverse returns a copy of table where every route learned through neighbour is unreachable
func PoisonReverse(table state.Table, neighbour string) state.Table {
	out := table.Clone()
	for dst, route := range out {
		if route.NextHop == neighbour {
			route.Cost = state.Infinity
			out[dst] = route
		}
	}
	return out
}

// BuildAdvertisement prepares the view of the table sent to neighbour: snapshot, summarize, poison reverse.
func (a *Advertiser) BuildAdvertisement(neighbour string) state.Advertisement {
	table := a.Table.Snapshot()
	if a.Summarize {
		table = Summarize(table)
	}
	return state.Advertisement{
		SenderAddress: a.Self,
		RoutingTable:  PoisonReverse(table, neighbour),
	}
}

// Advertise sends one round of advertisements to every neighbour concurrently, returning the number of
// failed sends. A failed send is only logged; the next round is the retry.
func (a *Advertiser) Advertise(ctx context.Context) int {
	start := time.Now()
	var failures atomic.Int32
	wg := sync.WaitGroup{}
	for _, neigh := range a.Neighbours.Addresses() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.advertiseTo(ctx, neigh); err != nil {
				failures.Add(1)
				perf.SendFailures.Add(1)
				a.Log.Warn("could not reach neighbour", "neighbour", neigh, "error", err)
				return
			}
			perf.AdvertisementsSent.Add(1)
		}()
	}
	wg.Wait()
	perf.AdvertiseLatency.Add(float64(time.Since(start).Microseconds()))
	return int(failures.Load())
}

func (a *Advertiser) advertiseTo(ctx context.Context, neighbour string) error {
	adv := a.BuildAdvertisement(neighbour)
	if state.DBG_log_advertisements {
		a.Log.Debug("sending advertisement", "neighbour", neighbour, "routes", len(adv.RoutingTable), "table", adv.RoutingTable.String())
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = state.SendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Sender.Send(ctx, neighbour, adv)
}
