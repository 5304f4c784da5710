package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/internal/page"
	"github.com/VigiaStudios/VigiaGuardGo/internal/settings"
	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
)

// fakeSource serves a swappable document and counts loads.
type fakeSource struct {
	mu  sync.Mutex
	doc *fakeDocument
}

func (s *fakeSource) Load(ctx context.Context) (page.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, nil
}

func (s *fakeSource) swap(doc *fakeDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

type observerFixture struct {
	bus      *MemoryBus
	observer *Observer
	source   *fakeSource
	toggle   *settings.Toggle
	gateway  *storage.MemoryGateway
	cancel   context.CancelFunc
}

func startObserver(t *testing.T, doc *fakeDocument, snap *BlockSnapshot, opts ObserverOptions) *observerFixture {
	t.Helper()

	gateway := storage.NewMemoryGateway()
	toggle, err := settings.NewToggle(gateway)
	if err != nil {
		t.Fatalf("NewToggle() error = %v", err)
	}
	if err := toggle.Set(true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The reconciler reads the canned snapshot back out of storage.
	r := NewReconciler(gateway, &fakeFetcher{err: context.Canceled}, "uuid-1")
	if snap != nil {
		gateway.SetList(storage.KeyReportedPosts, setToList(snap.ReportedPosts))
		gateway.SetList(storage.KeySpamPosts, setToList(snap.SpamPosts))
		gateway.SetList(storage.KeyReportedUsernames, setToList(snap.ReportedUsernames))
		gateway.SetList(storage.KeySpamUsernames, setToList(snap.SpamUsernames))
	}

	bus := NewMemoryBus()
	source := &fakeSource{doc: doc}
	matcher := NewMatcher(toggle)
	obs := NewObserver(bus, matcher, r, toggle, source, opts)

	ctx, cancel := context.WithCancel(context.Background())
	go obs.Run(ctx)
	t.Cleanup(cancel)

	return &observerFixture{bus: bus, observer: obs, source: source, toggle: toggle, gateway: gateway, cancel: cancel}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func defaultOpts() ObserverOptions {
	return ObserverOptions{
		Debounce:        30 * time.Millisecond,
		RescanInterval:  10 * time.Second,
		URLPollInterval: 20 * time.Millisecond,
	}
}

func TestObserverHidesOnStartup(t *testing.T) {
	item := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:111"}}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{item}}
	snap := snapshotWith(func(s *BlockSnapshot) {
		s.ReportedPosts["111"] = struct{}{}
	})

	startObserver(t, doc, snap, defaultOpts())

	waitFor(t, "startup scan", func() bool { return item.Hidden() })
}

func TestObserverScansAfterMutationBurst(t *testing.T) {
	doc := &fakeDocument{url: "https://example.com/feed/"}
	snap := snapshotWith(func(s *BlockSnapshot) {
		s.ReportedPosts["111"] = struct{}{}
	})

	opts := defaultOpts()
	opts.RescanInterval = 10 * time.Second
	opts.URLPollInterval = 10 * time.Second // isolate the debounce path
	fx := startObserver(t, doc, snap, opts)

	// The flagged post shows up after startup; only the debounced
	// mutation scan can hide it.
	item := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:111"}}
	doc.addFeed(item)

	for i := 0; i < 10; i++ {
		fx.observer.NotifyMutation()
	}

	waitFor(t, "debounced scan", func() bool { return item.Hidden() })
	if calls := item.hideCount(); calls != 1 {
		t.Errorf("Hide called %d times after one burst, want 1", calls)
	}
}

func TestObserverRefreshesListsBeforeScanning(t *testing.T) {
	item := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:555"}}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{item}}

	opts := defaultOpts()
	opts.URLPollInterval = 10 * time.Second // isolate the debounce path
	fx := startObserver(t, doc, nil, opts)

	// The post gets reported after the page loaded. The next mutation
	// scan must read the fresh list instead of the startup snapshot.
	if err := fx.gateway.AppendList(storage.KeyReportedPosts, "555"); err != nil {
		t.Fatalf("AppendList() error = %v", err)
	}
	fx.observer.NotifyMutation()

	waitFor(t, "scan with refreshed lists", func() bool { return item.Hidden() })
}

func TestObserverSurvivesScanPanic(t *testing.T) {
	item := &fakeElement{
		attrs:      map[string]string{"data-urn": "urn:li:activity:111"},
		hidePanics: 1,
	}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{item}}
	snap := snapshotWith(func(s *BlockSnapshot) {
		s.ReportedPosts["111"] = struct{}{}
	})

	opts := defaultOpts()
	opts.URLPollInterval = 10 * time.Second
	fx := startObserver(t, doc, snap, opts)

	// The startup scan blows up inside Hide. The loop has to stay
	// alive and hide the post on the next scan.
	fx.observer.NotifyMutation()

	waitFor(t, "scan after panic", func() bool { return item.Hidden() })
}

func TestObserverEnableDisableMessages(t *testing.T) {
	item := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:111"}}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{item}}
	snap := snapshotWith(func(s *BlockSnapshot) {
		s.ReportedPosts["111"] = struct{}{}
	})

	fx := startObserver(t, doc, snap, defaultOpts())
	waitFor(t, "startup scan", func() bool { return item.Hidden() })

	fx.bus.Send(Message{Action: ActionSettingsUpdated, Setting: "status", Value: false})
	waitFor(t, "toggle off", func() bool { return !fx.toggle.Enabled() })

	fx.bus.Send(Message{Action: ActionSettingsUpdated, Setting: "status", Value: true})
	waitFor(t, "toggle on", func() bool { return fx.toggle.Enabled() })
}

func TestObserverIgnoresUnrelatedSettings(t *testing.T) {
	doc := &fakeDocument{url: "https://example.com/feed/"}
	fx := startObserver(t, doc, nil, defaultOpts())

	fx.bus.Send(Message{Action: ActionSettingsUpdated, Setting: "notifications", Value: false})

	waitFor(t, "message consumed", func() bool { return len(fx.bus.Messages()) == 0 })
	time.Sleep(50 * time.Millisecond)
	if !fx.toggle.Enabled() {
		t.Error("an unrelated setting update flipped the protection switch")
	}
}

func TestObserverResetsOnNavigation(t *testing.T) {
	first := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:111"}}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{first}}
	snap := snapshotWith(func(s *BlockSnapshot) {
		s.ReportedPosts["111"] = struct{}{}
	})

	fx := startObserver(t, doc, snap, defaultOpts())
	waitFor(t, "startup scan", func() bool { return first.Hidden() })

	// Navigate: same flagged post rendered fresh on another page.
	second := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:111"}}
	fx.source.swap(&fakeDocument{
		url:  "https://example.com/feed/page2/",
		feed: []*fakeElement{second},
	})

	waitFor(t, "scan after navigation", func() bool { return second.Hidden() })
}

func TestObserverCheckAndBlockMessage(t *testing.T) {
	item := &fakeElement{attrs: map[string]string{"data-urn": "urn:li:activity:777"}}
	doc := &fakeDocument{url: "https://example.com/feed/", feed: []*fakeElement{item}}

	fx := startObserver(t, doc, nil, defaultOpts())

	fx.bus.Send(Message{
		Action:  ActionCheckAndBlockPost,
		PostURL: "https://example.com/feed/update/urn:li:activity:777/",
	})

	waitFor(t, "instant block", func() bool { return item.Hidden() })
}

func TestObserverRateLimitsMutations(t *testing.T) {
	doc := &fakeDocument{url: "https://example.com/feed/"}

	opts := defaultOpts()
	opts.Limiter = &settings.RateLimiter{Window: time.Minute, MaxEvents: 2}
	fx := startObserver(t, doc, nil, opts)

	for i := 0; i < 10; i++ {
		fx.observer.NotifyMutation()
	}
	// Only the first two events entered the window.
	if opts.Limiter.Allow() {
		t.Error("limiter should be exhausted after the burst")
	}
}
