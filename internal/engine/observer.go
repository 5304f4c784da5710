package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/internal/extract"
	"github.com/VigiaStudios/VigiaGuardGo/internal/page"
	"github.com/VigiaStudios/VigiaGuardGo/internal/settings"
	"github.com/VigiaStudios/VigiaGuardGo/internal/storage"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/errors"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
)

// DocumentSource provides the current document to scan. Live agents
// return the rendered page; the headless agent re-reads its snapshot.
type DocumentSource interface {
	Load(ctx context.Context) (page.Document, error)
}

// ObserverOptions are the timing knobs of the loop.
type ObserverOptions struct {
	// Debounce is how long after the last mutation a scan fires.
	Debounce time.Duration
	// RescanInterval triggers full periodic scans.
	RescanInterval time.Duration
	// URLPollInterval is how often the document address is checked
	// for navigation.
	URLPollInterval time.Duration
	// Limiter bounds how many mutation events enter the loop.
	Limiter *settings.RateLimiter
}

// Observer is the single-goroutine event loop of a scan agent. It
// reacts to page mutations, periodic rescans, navigation and control
// messages, and never scans from more than one place at a time.
type Observer struct {
	bus        MessageBus
	matcher    *Matcher
	reconciler *Reconciler
	toggle     *settings.Toggle
	source     DocumentSource
	opts       ObserverOptions

	mutations chan struct{}
	doc       page.Document
	snap      *BlockSnapshot
	lastURL   string
}

// NewObserver wires the loop together. Run must be called to start it.
func NewObserver(bus MessageBus, matcher *Matcher, reconciler *Reconciler, toggle *settings.Toggle, source DocumentSource, opts ObserverOptions) *Observer {
	return &Observer{
		bus:        bus,
		matcher:    matcher,
		reconciler: reconciler,
		toggle:     toggle,
		source:     source,
		opts:       opts,
		mutations:  make(chan struct{}, 64),
	}
}

// NotifyMutation signals that the page changed. Safe to call from any
// goroutine; excess events inside the rate window are dropped.
func (o *Observer) NotifyMutation() {
	if o.opts.Limiter != nil && !o.opts.Limiter.Allow() {
		return
	}
	select {
	case o.mutations <- struct{}{}:
	default:
	}
}

// Run processes events until the context is canceled.
func (o *Observer) Run(ctx context.Context) {
	defer errors.RecoverMiddleware()()

	if err := o.reload(ctx, true); err != nil {
		logger.Error(fmt.Sprintf("Error cargando el documento inicial: %v", err), "OBSERVER")
	}

	debounce := time.NewTimer(o.opts.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	rescan := time.NewTicker(o.opts.RescanInterval)
	defer rescan.Stop()
	urlPoll := time.NewTicker(o.opts.URLPollInterval)
	defer urlPoll.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.System("Observador detenido", "OBSERVER")
			return

		case msg, ok := <-o.bus.Messages():
			if !ok {
				return
			}
			o.handleMessage(ctx, msg)

		case <-o.mutations:
			// Coalesce bursts: only the quiet period after the last
			// mutation triggers a scan.
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(o.opts.Debounce)

		case <-debounce.C:
			o.refreshSnapshot(ctx)
			o.scan()

		case <-rescan.C:
			o.refreshSnapshot(ctx)
			o.scan()

		case <-urlPoll.C:
			o.pollURL(ctx)
		}
	}
}

func (o *Observer) handleMessage(ctx context.Context, msg Message) {
	defer errors.RecoverMiddleware()()

	switch msg.Action {
	case ActionSettingsUpdated:
		// Only the enable switch is actionable; other setting names
		// must not flip it.
		if msg.Setting != "" && msg.Setting != storage.KeyStatus {
			logger.Debug(fmt.Sprintf("Ajuste no reconocido: %s", msg.Setting), "OBSERVER")
			return
		}
		if err := o.toggle.Set(msg.Value); err != nil {
			logger.Error(fmt.Sprintf("Error actualizando el ajuste %s: %v", msg.Setting, err), "OBSERVER")
			return
		}
		if msg.Value {
			o.scan()
		}

	case ActionReEvaluatePosts:
		o.matcher.Reset()
		o.refreshSnapshot(ctx)
		o.scan()

	case ActionCheckAndBlockPost:
		if postID, ok := extract.PostID(msg.PostURL); ok {
			if err := o.reconciler.AddReportedPost(postID); err != nil {
				logger.Error(fmt.Sprintf("Error guardando el post reportado: %v", err), "OBSERVER")
			}
			o.refreshSnapshot(ctx)
		}
		if o.doc != nil && o.matcher.CheckAndBlock(o.doc, msg.PostURL) {
			logger.Info(fmt.Sprintf("Post bloqueado al instante: %s", msg.PostURL), "OBSERVER")
		} else {
			logger.Debug(fmt.Sprintf("Post no visible en la página: %s", msg.PostURL), "OBSERVER")
		}

	default:
		logger.Debug(fmt.Sprintf("Acción desconocida: %s", msg.Action), "OBSERVER")
	}
}

// scan recovers its own panics so that a rogue page element cannot
// kill the event loop.
func (o *Observer) scan() {
	defer errors.RecoverMiddleware()()

	if o.doc == nil || !o.toggle.Enabled() {
		return
	}
	o.matcher.Scan(o.doc, o.snap)
}

// pollURL reloads the document and resets the matcher when the page
// navigated somewhere else.
func (o *Observer) pollURL(ctx context.Context) {
	defer errors.RecoverMiddleware()()

	doc, err := o.source.Load(ctx)
	if err != nil {
		logger.Debug(fmt.Sprintf("Error recargando el documento: %v", err), "OBSERVER")
		return
	}
	if doc.URL() == o.lastURL {
		return
	}

	logger.Info(fmt.Sprintf("Navegación detectada: %s", doc.URL()), "OBSERVER")
	o.doc = doc
	o.lastURL = doc.URL()
	o.matcher.Reset()
	o.refreshSnapshot(ctx)
	o.scan()
}

func (o *Observer) reload(ctx context.Context, initial bool) error {
	doc, err := o.source.Load(ctx)
	if err != nil {
		return err
	}
	o.doc = doc
	o.lastURL = doc.URL()
	if initial {
		o.refreshSnapshot(ctx)
		o.scan()
	}
	return nil
}

func (o *Observer) refreshSnapshot(ctx context.Context) {
	snap, err := o.reconciler.Refresh(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("Error refrescando las listas: %v", err), "OBSERVER")
		return
	}
	o.snap = snap
}
