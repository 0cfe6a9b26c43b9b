package notify

import (
	"context"
	"time"

	"k8s.io/klog/v2"
)

var dispatchTimeout = 10 * time.Second

// Manager fans one event out to all configured sinks. Dispatch returns
// immediately; each sink runs on its own goroutine with a bounded timeout
// and failures are logged, never propagated.
type Manager struct {
	sinks []Notifier
}

func NewManager(sinks ...Notifier) *Manager {
	return &Manager{sinks: sinks}
}

func (m *Manager) Dispatch(_ context.Context, ev Event) error {
	for _, sink := range m.sinks {
		go func(n Notifier) {
			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()
			if err := n.Dispatch(ctx, ev); err != nil {
				klog.Errorf("notify: dispatch %s event %s failed: %v", ev.Type, ev.ID, err)
			}
		}(sink)
	}
	return nil
}
