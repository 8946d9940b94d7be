package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/animesync/animesync/pkg/reconcile"
)

const settle = 20 * time.Millisecond

func waitDelivery(t *testing.T, ch <-chan Delivery) Delivery {
	t.Helper()
	select {
	case dl := <-ch:
		return dl
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a delivery")
	}
	return Delivery{}
}

func TestNotifyCoalescesBursts(t *testing.T) {
	var calls int32
	delivered := make(chan Delivery, 4)
	d := New(Config{
		Settle: settle,
		Run: func(_ context.Context, ev Event) (*reconcile.Result, error) {
			atomic.AddInt32(&calls, 1)
			return &reconcile.Result{Outcome: reconcile.OutcomeApplied}, nil
		},
		OnResult: func(dl Delivery) { delivered <- dl },
	})
	defer d.Close()

	for _, loc := range []string{"/watch/a?ep=1", "/watch/a?ep=2", "/watch/a?ep=3"} {
		if !d.Notify(Event{Location: loc}) {
			t.Fatalf("Notify(%s) ignored", loc)
		}
	}

	dl := waitDelivery(t, delivered)
	if dl.Location != "/watch/a?ep=3" || dl.Result.Outcome != reconcile.OutcomeApplied {
		t.Errorf("delivery = %+v", dl)
	}
	time.Sleep(3 * settle)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("run called %d times, want 1", n)
	}

	latest, ok := d.Latest()
	if !ok || latest.Location != "/watch/a?ep=3" {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
}

func TestNotifyIgnoresUnchangedLocation(t *testing.T) {
	d := New(Config{Settle: time.Hour, Run: func(context.Context, Event) (*reconcile.Result, error) { return nil, nil }})
	defer d.Close()

	if !d.Notify(Event{Location: "/a"}) {
		t.Fatal("first notify ignored")
	}
	if d.Notify(Event{Location: "/a", Body: "<html>changed</html>"}) {
		t.Error("repeat notify for the same location accepted")
	}
	if !d.Notify(Event{Location: "/b"}) {
		t.Error("new location ignored")
	}
	if _, ok := d.Latest(); ok {
		t.Error("delivery before any run finished")
	}
}

func TestNewerNavigationSupersedesRunningJob(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 4)
	delivered := make(chan Delivery, 4)

	var active, maxActive int32
	var mu sync.Mutex
	d := New(Config{
		Settle: settle,
		Run: func(_ context.Context, ev Event) (*reconcile.Result, error) {
			n := atomic.AddInt32(&active, 1)
			mu.Lock()
			if n > maxActive {
				maxActive = n
			}
			mu.Unlock()
			defer atomic.AddInt32(&active, -1)

			started <- ev.Location
			if ev.Location == "/first" {
				<-release
			}
			return &reconcile.Result{RunID: ev.Location}, nil
		},
		OnResult: func(dl Delivery) { delivered <- dl },
	})
	defer d.Close()

	d.Notify(Event{Location: "/first"})
	if loc := <-started; loc != "/first" {
		t.Fatalf("started %s", loc)
	}

	d.Notify(Event{Location: "/second"})
	time.Sleep(3 * settle)
	close(release)

	if loc := <-started; loc != "/second" {
		t.Fatalf("started %s", loc)
	}
	dl := waitDelivery(t, delivered)
	if dl.Location != "/second" {
		t.Errorf("delivered %s, want /second only", dl.Location)
	}
	select {
	case extra := <-delivered:
		t.Errorf("unexpected delivery %+v", extra)
	case <-time.After(3 * settle):
	}

	mu.Lock()
	defer mu.Unlock()
	if maxActive != 1 {
		t.Errorf("%d jobs ran concurrently", maxActive)
	}
}

func TestCloseCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	d := New(Config{
		Settle: settle,
		Run: func(ctx context.Context, _ Event) (*reconcile.Result, error) {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		},
	})

	d.Notify(Event{Location: "/a"})
	<-started
	d.Close()

	select {
	case <-cancelled:
	default:
		t.Fatal("Close returned before the job saw cancellation")
	}
	if d.Notify(Event{Location: "/b"}) {
		t.Error("Notify accepted after Close")
	}
}
