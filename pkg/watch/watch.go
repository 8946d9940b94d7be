// Package watch debounces navigation events into reconciliation runs.
//
// Single page sites change location without reloading, and their markup keeps
// changing for a while after that. A Debouncer waits for the location to
// settle before running, runs one job at a time, and only delivers the result
// of the newest navigation. A stale run that already wrote to the catalog is
// not rolled back.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/animesync/animesync/pkg/reconcile"
)

const DefaultSettle = 3 * time.Second

// Event reports that the browser is now at Location.
type Event struct {
	Location string
	// Body is a snapshot of the page markup, if the source has one.
	Body string
}

// RunFunc handles a settled event.
type RunFunc func(ctx context.Context, ev Event) (*reconcile.Result, error)

// Delivery is the outcome of the newest completed run.
type Delivery struct {
	Location string            `json:"location"`
	Result   *reconcile.Result `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
	At       time.Time         `json:"at"`
}

type Config struct {
	Settle time.Duration // defaults to DefaultSettle if <= 0
	Run    RunFunc
	// OnResult is called with every delivered run, outside the debouncer lock.
	OnResult func(Delivery)
	Log      reconcile.Logger
}

type pending struct {
	ev  Event
	gen uint64
}

type Debouncer struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	location string
	gen      uint64
	next     *pending
	timer    *time.Timer
	running  bool
	queued   uint64 // gen whose settle timer fired while busy
	latest   *Delivery
	closed   bool
}

func New(cfg Config) *Debouncer {
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.Log == nil {
		cfg.Log = nopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{cfg: cfg, ctx: ctx, cancel: cancel}
}

// Notify records a navigation. It returns false when the event was ignored
// because the location did not change or the debouncer is closed.
func (d *Debouncer) Notify(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || ev.Location == d.location {
		return false
	}
	d.location = ev.Location
	d.gen++
	d.next = &pending{ev: ev, gen: d.gen}

	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.cfg.Settle, func() { d.settled(gen) })
	d.cfg.Log.Debugf("navigation to %s, waiting %s", ev.Location, d.cfg.Settle)
	return true
}

func (d *Debouncer) settled(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || gen != d.gen || d.next == nil {
		return
	}
	if d.running {
		d.queued = gen
		return
	}
	d.startLocked()
}

func (d *Debouncer) startLocked() {
	p := *d.next
	d.next = nil
	d.running = true
	d.wg.Add(1)
	go d.run(p)
}

func (d *Debouncer) run(p pending) {
	defer d.wg.Done()

	res, err := d.cfg.Run(d.ctx, p.ev)
	dl := Delivery{Location: p.ev.Location, Result: res, At: time.Now()}
	if err != nil {
		dl.Error = err.Error()
	}

	d.mu.Lock()
	d.running = false
	current := p.gen == d.gen
	if current {
		d.latest = &dl
	}
	if d.next != nil && d.next.gen == d.queued && !d.closed {
		d.startLocked()
	}
	d.queued = 0
	onResult := d.cfg.OnResult
	d.mu.Unlock()

	if !current {
		d.cfg.Log.Debugf("run for %s superseded by a newer navigation", p.ev.Location)
		return
	}
	if onResult != nil {
		onResult(dl)
	}
}

// Latest returns the newest delivered run.
func (d *Debouncer) Latest() (Delivery, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest == nil {
		return Delivery{}, false
	}
	return *d.latest, true
}

// Close drops pending events, cancels the running job and waits for it.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	d.next = nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
