//go:build integration

package integration

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/encodeous/dvrouter/core"
	"github.com/encodeous/dvrouter/state"
)

// LocalHarness runs real router nodes on loopback ports
type LocalHarness struct {
	Nodes  map[string]*state.NodeCfg
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	errs   chan error
}

func NewLocalHarness() *LocalHarness {
	return &LocalHarness{
		Nodes: make(map[string]*state.NodeCfg),
	}
}

func freePort(t *testing.T) uint16 {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return uint16(ln.Addr().(*net.TCPAddr).Port)
}

// NewNode registers a node administering network and returns its address
func (h *LocalHarness) NewNode(t *testing.T, name, network string) string {
	cfg := state.DefaultNodeCfg()
	cfg.Host = "127.0.0.1"
	cfg.ListenHost = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.Network = network
	cfg.IntervalSec = 1
	h.Nodes[name] = &cfg
	return cfg.Address()
}

func (h *LocalHarness) Addr(name string) string {
	return h.Nodes[name].Address()
}

func (h *LocalHarness) Link(a, b string, cost int) {
	h.Nodes[a].Neighbours[h.Addr(b)] = cost
	h.Nodes[b].Neighbours[h.Addr(a)] = cost
}

// Start runs every node in its own goroutine
func (h *LocalHarness) Start(t *testing.T) {
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.errs = make(chan error, len(h.Nodes))
	for name, cfg := range h.Nodes {
		if err := state.NodeConfigValidator(cfg); err != nil {
			t.Fatalf("node %s: %v", name, err)
		}
		h.StartNode(name)
	}
}

func (h *LocalHarness) StartNode(name string) context.CancelFunc {
	ctx, cancel := context.WithCancel(h.ctx)
	cfg := *h.Nodes[name]
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		err := core.Start(ctx, cfg, slog.LevelDebug)
		if err != nil {
			h.errs <- errors.Join(errors.New("node "+name+" at port "+strconv.Itoa(int(cfg.Port))), err)
		}
	}()
	return cancel
}

// Stop shuts every node down and reports the first node that failed to start
func (h *LocalHarness) Stop(t *testing.T) {
	h.cancel()
	h.wg.Wait()
	close(h.errs)
	for err := range h.errs {
		t.Error(err)
	}
}

func (h *LocalHarness) Route(name string, dst state.Destination) (state.Route, bool) {
	ins, err := core.InspectGet(h.Addr(name))
	if err != nil {
		return state.Route{}, false
	}
	r, ok := ins.RoutingTable[dst]
	return r, ok
}
