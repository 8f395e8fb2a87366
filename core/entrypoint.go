package core

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"reflect"
	"syscall"

	"github.com/encodeous/dvrouter/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

func NewLogger(cfg state.NodeCfg, logLevel slog.Level) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        logLevel,
			AddSource:    false,
			CustomPrefix: cfg.Address(),
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if cfg.LogPath != "" {
		err := os.MkdirAll(path.Dir(cfg.LogPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Start runs a router node until ctx is cancelled or the process receives SIGINT/SIGTERM.
// cfg must already be validated.
func Start(ctx context.Context, cfg state.NodeCfg, logLevel slog.Level) error {
	ctx, cancel := context.WithCancelCause(ctx)

	logger, err := NewLogger(cfg, logLevel)
	if err != nil {
		cancel(err)
		return err
	}

	s := state.State{
		Modules: make(map[string]state.NyModule),
		Env: &state.Env{
			NodeCfg: cfg,
			Context: ctx,
			Cancel:  cancel,
			Log:     logger,
		},
	}

	s.Log.Info("init modules")
	err = initModules(&s)
	if err != nil {
		Stop(&s)
		return err
	}
	s.Log.Info("init modules complete")

	s.Log.Info("Router has been initialized. To gracefully exit, send SIGINT or Ctrl+C.",
		"address", s.Address(), "network", s.Network, "neighbours", len(s.Neighbours), "interval", s.Interval())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			s.Cancel(errors.New("received shutdown signal"))
		case <-ctx.Done():
			return
		}
	}()

	MainLoop(&s)
	return nil
}

func initModules(s *state.State) error {
	var modules []state.NyModule
	modules = append(modules, &Router{})
	modules = append(modules, &Transport{})

	for _, module := range modules {
		s.Modules[reflect.TypeOf(module).String()] = module
		if err := module.Init(s); err != nil {
			return err
		}
	}
	return nil
}

// MainLoop blocks for the lifetime of the node. All work happens in the advertiser task and in the
// HTTP handlers, both of which go through the RoutingTable lock.
func MainLoop(s *state.State) {
	s.Log.Debug("started main loop")
	s.Started.Store(true)
	<-s.Context.Done()
	s.Log.Info("stopped main loop", "reason", context.Cause(s.Context).Error())
	Stop(s)
}

func Stop(s *state.State) {
	if s.Stopping.Swap(true) {
		return // don't stop twice
	}
	s.Cancel(context.Canceled)
	s.Log.Info("cleaning up modules")
	for moduleName, module := range s.Modules {
		err := module.Cleanup(s)
		if err != nil {
			s.Log.Error("error occurred during Stop: ", "module", moduleName, "error", err)
		}
	}
	s.Wait()
	s.Log.Info("stopped")
}
