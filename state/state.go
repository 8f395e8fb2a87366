package state

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type NyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State is owned by the node lifecycle. Modules keep what they need from it during Init.
type State struct {
	*Env
	Modules map[string]NyModule
}

// Env can be read from any Goroutine
type Env struct {
	NodeCfg
	Context  context.Context
	Cancel   context.CancelCauseFunc
	Log      *slog.Logger
	Started  atomic.Bool
	Stopping atomic.Bool
	tasks    sync.WaitGroup
}

// Wait blocks until every task started with RepeatTask has returned
func (e *Env) Wait() {
	e.tasks.Wait()
}
