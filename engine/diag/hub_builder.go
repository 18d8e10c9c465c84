package diag

import (
	"time"

	"github.com/rs/zerolog"
)

// HubBuilderOption is a functional option for configuring a Hub.
type HubBuilderOption func(h *Hub)

// WithQueueSize sets how many messages may wait for a slow client before new ones are dropped.
//
// Parameters:
//   - n: the per-client queue size (values < 1 use 1)
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithQueueSize(n int) HubBuilderOption {
	return func(h *Hub) {
		h.queueSize = max(n, 1)
	}
}

// WithWriteTimeout sets the deadline for writing one message to a client.
//
// Parameters:
//   - d: the write timeout
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithWriteTimeout(d time.Duration) HubBuilderOption {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

// WithLogger sets the hub's logger.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) HubBuilderOption {
	return func(h *Hub) {
		h.logger = logger
	}
}
