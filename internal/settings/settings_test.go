package settings

import (
	"testing"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
)

func TestTogglePersists(t *testing.T) {
	gateway := storage.NewMemoryGateway()

	toggle, err := NewToggle(gateway)
	if err != nil {
		t.Fatalf("NewToggle() error = %v", err)
	}
	if toggle.Enabled() {
		t.Error("fresh toggle should start disabled")
	}

	if err := toggle.Set(true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !toggle.Enabled() {
		t.Error("Enabled() = false after Set(true)")
	}

	// A new toggle over the same gateway sees the persisted state.
	reloaded, err := NewToggle(gateway)
	if err != nil {
		t.Fatalf("NewToggle() reload error = %v", err)
	}
	if !reloaded.Enabled() {
		t.Error("reloaded toggle lost the persisted state")
	}
}

func TestApplyRespectsLimiterAndPublishes(t *testing.T) {
	gateway := storage.NewMemoryGateway()
	toggle, err := NewToggle(gateway)
	if err != nil {
		t.Fatalf("NewToggle() error = %v", err)
	}

	limiter := &RateLimiter{Window: time.Minute, MaxEvents: 1}

	var published []bool
	publish := func(enabled bool) error {
		published = append(published, enabled)
		return nil
	}

	if err := toggle.Apply(true, limiter, publish); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !toggle.Enabled() || len(published) != 1 || !published[0] {
		t.Errorf("Apply() state = (%v, %v), want enabled and one publish", toggle.Enabled(), published)
	}

	// Second flip inside the window is rejected before anything happens.
	if err := toggle.Apply(false, limiter, publish); err != ErrTooManyChanges {
		t.Errorf("Apply() error = %v, want ErrTooManyChanges", err)
	}
	if !toggle.Enabled() {
		t.Error("rejected flip must not change the persisted state")
	}
	if len(published) != 1 {
		t.Errorf("rejected flip published %d times, want still 1", len(published))
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := &RateLimiter{Window: 100 * time.Millisecond, MaxEvents: 3}

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("event %d should be allowed", i)
		}
	}
	if limiter.Allow() {
		t.Error("fourth event inside the window should be rejected")
	}

	time.Sleep(120 * time.Millisecond)
	if !limiter.Allow() {
		t.Error("event after the window expired should be allowed")
	}
}
