package broadcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"sms-relay/internal/model"
	"sms-relay/internal/store"
)

type countingSender struct {
	mu     sync.Mutex
	sent   map[string]int
	failTo map[string]error
}

func newCountingSender() *countingSender {
	return &countingSender{sent: map[string]int{}, failTo: map[string]error{}}
}

func (c *countingSender) Send(_ context.Context, to, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failTo[to]; ok {
		return err
	}
	c.sent[to]++
	return nil
}

func (c *countingSender) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.sent {
		n += v
	}
	return n
}

// trackingStore counts scans so validation failures can be shown to skip I/O.
type trackingStore struct {
	store.Store
	scans int
}

func (ts *trackingStore) All(ctx context.Context) ([]model.Subscriber, error) {
	ts.scans++
	return ts.Store.All(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func seedSubscribers(t *testing.T, st store.Store, n int) []string {
	t.Helper()
	numbers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		num := fmt.Sprintf("+1555000%04d", i)
		if _, err := st.Create(context.Background(), model.Subscriber{PhoneNumber: num, SubscribedAt: "2025-01-01T00:00:00Z"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		numbers = append(numbers, num)
	}
	return numbers
}

func TestBroadcast_EmptyMessageFailsBeforeAnyIO(t *testing.T) {
	ts := &trackingStore{Store: store.NewMemory()}
	snd := newCountingSender()
	d := NewDispatcher(ts, snd, testLogger(), 4)

	_, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: ""})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if ts.scans != 0 {
		t.Fatalf("expected zero store scans, got %d", ts.scans)
	}
	if snd.total() != 0 {
		t.Fatalf("expected zero sends, got %d", snd.total())
	}
}

func TestBroadcast_OverlongMessageFails(t *testing.T) {
	d := NewDispatcher(store.NewMemory(), newCountingSender(), testLogger(), 4)

	_, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: strings.Repeat("x", MaxMessageLen+1)})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestBroadcast_MaxLengthMessageReachesEveryone(t *testing.T) {
	st := store.NewMemory()
	numbers := seedSubscribers(t, st, 5)
	snd := newCountingSender()
	d := NewDispatcher(st, snd, testLogger(), 2)

	res, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: strings.Repeat("x", MaxMessageLen)})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if res.Attempted != len(numbers) || res.Succeeded != len(numbers) || res.Failed != 0 {
		t.Fatalf("unexpected tally: %+v", res)
	}
	if !res.OK() {
		t.Fatalf("expected OK result")
	}
	for _, num := range numbers {
		if snd.sent[num] != 1 {
			t.Fatalf("expected exactly one send to %s, got %d", num, snd.sent[num])
		}
	}
}

func TestBroadcast_SingleFailureFailsTheBatch(t *testing.T) {
	st := store.NewMemory()
	numbers := seedSubscribers(t, st, 4)
	snd := newCountingSender()
	snd.failTo[numbers[2]] = errors.New("provider rejected")
	d := NewDispatcher(st, snd, testLogger(), 4)

	res, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: "Test alert"})
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}

	// The tally still accounts for the deliveries that went out; they are
	// not rolled back.
	if res.Attempted != 4 || res.Succeeded != 3 || res.Failed != 1 {
		t.Fatalf("unexpected tally: %+v", res)
	}
	if snd.total() != 3 {
		t.Fatalf("expected 3 real deliveries, got %d", snd.total())
	}
}

func TestBroadcast_NoSubscribers(t *testing.T) {
	d := NewDispatcher(store.NewMemory(), newCountingSender(), testLogger(), 4)

	res, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: "anyone there"})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if res.Attempted != 0 || !res.OK() {
		t.Fatalf("unexpected tally: %+v", res)
	}
}

func TestBroadcast_StoreScanError(t *testing.T) {
	boom := errors.New("scan failed")
	d := NewDispatcher(&errStore{err: boom}, newCountingSender(), testLogger(), 4)

	_, err := d.Broadcast(context.Background(), model.BroadcastRequest{Message: "hello"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

type errStore struct {
	store.Store
	err error
}

func (e *errStore) All(context.Context) ([]model.Subscriber, error) {
	return nil, e.err
}
