// Package settings holds the runtime switches of a scan agent: the
// enable toggle persisted in local storage and the rate limiter that
// keeps bursty page mutations from flooding the engine.
package settings

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
)

// Toggle is the persisted enable switch. Reads are served from memory;
// writes go through to the gateway so the state survives restarts.
type Toggle struct {
	mu      sync.RWMutex
	enabled bool
	gateway storage.Gateway
}

// NewToggle loads the persisted state from the gateway.
func NewToggle(gateway storage.Gateway) (*Toggle, error) {
	enabled, err := gateway.GetBool(storage.KeyStatus)
	if err != nil {
		return nil, fmt.Errorf("error leyendo el estado del agente: %w", err)
	}
	return &Toggle{enabled: enabled, gateway: gateway}, nil
}

// Enabled reports whether scanning is active.
func (t *Toggle) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Set updates and persists the enable state.
func (t *Toggle) Set(enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.gateway.SetBool(storage.KeyStatus, enabled); err != nil {
		return err
	}
	t.enabled = enabled
	if enabled {
		logger.Info("Protección activada", "SETTINGS")
	} else {
		logger.Info("Protección desactivada", "SETTINGS")
	}
	return nil
}

// ErrTooManyChanges is returned when toggle flips exceed the limiter.
var ErrTooManyChanges = errors.New("demasiados cambios seguidos, espera un momento")

// Apply is the user-facing toggle path: it checks the rate limiter,
// persists the state and then publishes the change. A rejected flip
// never reaches the publisher.
func (t *Toggle) Apply(enabled bool, limiter *RateLimiter, publish func(enabled bool) error) error {
	if limiter != nil && !limiter.Allow() {
		return ErrTooManyChanges
	}
	if err := t.Set(enabled); err != nil {
		return err
	}
	if publish != nil {
		return publish(enabled)
	}
	return nil
}

// RateLimiter allows at most MaxEvents events per sliding Window.
type RateLimiter struct {
	Window    time.Duration
	MaxEvents int

	mu     sync.Mutex
	events []time.Time
}

// Allow records an event and reports whether it fits the window.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.Window)

	kept := r.events[:0]
	for _, ts := range r.events {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.events = kept

	if len(r.events) >= r.MaxEvents {
		return false
	}
	r.events = append(r.events, now)
	return true
}
