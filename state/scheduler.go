package state

import (
	"fmt"
	"time"
)

func (e *Env) runTask(fun func(*Env) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error("task panicked", "panic", fmt.Sprint(r))
		}
	}()
	if err := fun(e); err != nil {
		e.Log.Error("error occurred during task", "error", err)
	}
}

func (e *Env) repeatedTask(fun func(*Env) error, delay time.Duration) {
	defer e.tasks.Done()
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-e.Context.Done():
			return
		case <-ticker.C:
			e.runTask(fun)
		}
	}
}

// RepeatTask runs fun every delay until the context is cancelled. The first run happens after one delay.
// An error or panic in one run is logged and does not stop later runs.
func (e *Env) RepeatTask(fun func(*Env) error, delay time.Duration) {
	e.tasks.Add(1)
	go e.repeatedTask(fun, delay)
}
