package ws

import (
	"log/slog"
)

// Monitor pings every connection of a registry. A connection that did not
// answer the previous ping is terminated, so a dead peer is detected after
// one to two sweep intervals.
type Monitor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewMonitor creates a monitor over registry
func NewMonitor(registry *Registry, logger *slog.Logger) *Monitor {
	return &Monitor{
		registry: registry,
		logger:   logger,
	}
}

// Sweep runs one ping cycle and returns the number of terminated connections.
// Pings are handed to each client's write pump, so a stalled peer never
// holds up the sweep. Terminated clients surface as a normal close through
// their read pump.
func (m *Monitor) Sweep() int {
	terminated := 0
	for _, c := range m.registry.Clients() {
		if !c.alive.Swap(false) {
			m.logger.Info("terminating unresponsive connection", slog.String("conn", string(c.id)))
			c.terminate()
			terminated++
			continue
		}
		c.requestPing()
	}
	return terminated
}
