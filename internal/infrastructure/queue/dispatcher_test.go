package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/core/domain"
)

type stubEventRepo struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	fail   bool
	stored chan struct{}
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{stored: make(chan struct{}, 1024)}
}

func (r *stubEventRepo) InsertEvent(_ context.Context, e *domain.ReservationEvent) error {
	defer func() { r.stored <- struct{}{} }()
	if r.fail {
		return errors.New("boom")
	}
	r.mu.Lock()
	r.events = append(r.events, *e)
	r.mu.Unlock()
	return nil
}

func (r *stubEventRepo) ListEvents(context.Context, string) ([]*domain.ReservationEvent, error) {
	return nil, nil
}

func (r *stubEventRepo) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.stored:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", i, n)
		}
	}
}

func TestDispatcher_PreservesOrderPerReservation(t *testing.T) {
	repo := newStubEventRepo()
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	actions := []domain.ReservationAction{domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted}
	for _, a := range actions {
		d.Record(domain.ReservationEvent{ReservationID: "r1", Action: a})
	}
	repo.waitFor(t, len(actions))
	cancel()
	d.Wait()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i, a := range actions {
		if repo.events[i].Action != a {
			t.Fatalf("event %d: got %s, want %s", i, repo.events[i].Action, a)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, newStubEventRepo(), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(d.workers), defaultWorkers)
	}
	first := d.shardIndex("664f1c2e9b1e8a0001a1b2c3")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("664f1c2e9b1e8a0001a1b2c3"); got != first {
			t.Fatalf("shard changed: %d vs %d", got, first)
		}
	}
}

func TestDispatcher_RecordDropsWhenFull(t *testing.T) {
	// Workers are never started, so the single shard fills up.
	d := NewDispatcher(1, newStubEventRepo(), zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.ReservationEvent{ReservationID: "r1", Action: domain.ActionCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("queued = %d, want %d", got, channelBuffer)
	}
}

func TestDispatcher_WriteFailureDoesNotStopWorker(t *testing.T) {
	repo := newStubEventRepo()
	repo.fail = true
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.ReservationEvent{ReservationID: "r1", Action: domain.ActionCreated})
	d.Record(domain.ReservationEvent{ReservationID: "r1", Action: domain.ActionDeleted})
	repo.waitFor(t, 2)
}
