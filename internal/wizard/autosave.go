package wizard

import (
	"context"
	"sync"
	"time"
)

// Autosaver saves the wizard's draft on a fixed interval while there are
// unsaved edits. Ticks are skipped while no type is chosen or the user is
// not identified.
type Autosaver struct {
	wizard   *Wizard
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAutosaver(w *Wizard) *Autosaver {
	interval := w.policy.AutosaveInterval
	if interval <= 0 {
		interval = DefaultPolicy().AutosaveInterval
	}
	return &Autosaver{wizard: w, interval: interval}
}

// Run blocks until ctx is cancelled.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Autosaver) tick(ctx context.Context) {
	w := a.wizard
	if !w.identity.Present() || !w.Dirty() {
		return
	}
	w.mu.Lock()
	typed := w.record.ApplicationType.Valid()
	w.mu.Unlock()
	if !typed {
		return
	}
	// failures are logged by saveDraft; the next tick retries
	_, _ = w.saveDraft(ctx, "autosave")
}

// Start runs the autosaver in its own goroutine. Calling Start twice is a no-op.
func (a *Autosaver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		a.Run(ctx)
	}(a.done)
}

// Stop cancels the loop and waits for an in-flight save to return.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
