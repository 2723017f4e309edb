package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"awbrn/engine/internal/config"
	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/playback"
	"awbrn/engine/internal/replay"
)

type fakeBroker struct {
	stats BrokerStats
	mu    sync.Mutex
	calls int
}

func (f *fakeBroker) Stats() BrokerStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.stats
}

func TestStatsHandlerReturnsJSON(t *testing.T) {
	fake := &fakeBroker{stats: BrokerStats{Broadcasts: 5, Clients: 2, Turn: 3, TurnCount: 12}}
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rr := httptest.NewRecorder()

	statsHandler(fake).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: got %q", ct)
	}

	var resp BrokerStats
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp != fake.stats {
		t.Fatalf("unexpected stats: got %+v want %+v", resp, fake.stats)
	}

	if fake.calls != 1 {
		t.Fatalf("expected Stats to be called once, got %d", fake.calls)
	}
}

func TestHealthzHandlerReportsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	healthzHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestOriginChecker(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "open when unconfigured", allowed: nil, origin: "https://evil.example", want: true},
		{name: "listed origin admitted", allowed: []string{"https://viewer.example"}, origin: "https://viewer.example", want: true},
		{name: "unlisted origin rejected", allowed: []string{"https://viewer.example"}, origin: "https://evil.example", want: false},
		{name: "missing header admitted", allowed: []string{"https://viewer.example"}, origin: "", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check := originChecker(tc.allowed)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if got := check(req); got != tc.want {
				t.Fatalf("originChecker(%v) with origin %q: got %v want %v", tc.allowed, tc.origin, got, tc.want)
			}
		})
	}
}

func testBroker(t *testing.T) *Broker {
	t.Helper()
	record := &replay.Replay{Games: []replay.Game{{Day: 1}, {Day: 2}}}
	state, err := playback.New(record, logging.NewTestLogger())
	if err != nil {
		t.Fatalf("playback state: %v", err)
	}
	cfg := &config.Config{
		MaxClients:      4,
		MaxPayloadBytes: config.DefaultMaxPayloadBytes,
		PingInterval:    time.Minute,
	}
	return NewBroker(state, cfg, logging.NewTestLogger())
}

func TestBroadcastEvictsSlowClients(t *testing.T) {
	broker := testBroker(t)
	slow := &Client{send: make(chan []byte)}
	fast := &Client{send: make(chan []byte, 4)}
	broker.clients[slow] = true
	broker.clients[fast] = true

	broker.broadcast([]byte("snapshot"))

	if _, ok := broker.clients[slow]; ok {
		t.Fatal("expected slow client to be evicted")
	}
	if _, ok := broker.clients[fast]; !ok {
		t.Fatal("expected fast client to survive")
	}
	select {
	case msg := <-fast.send:
		if string(msg) != "snapshot" {
			t.Fatalf("unexpected payload: %q", msg)
		}
	default:
		t.Fatal("expected fast client to receive the broadcast")
	}
	if _, open := <-slow.send; open {
		t.Fatal("expected slow client channel to be closed")
	}
}

func TestBrokerSeekValidatesRange(t *testing.T) {
	broker := testBroker(t)
	if err := broker.Seek(0); err != nil {
		t.Fatalf("seek to start: %v", err)
	}
	if err := broker.Seek(99); err == nil {
		t.Fatal("expected out of range seek to fail")
	}
	stats := broker.Stats()
	if stats.Turn != 0 {
		t.Fatalf("unexpected turn after rejected seek: %d", stats.Turn)
	}
	if stats.Broadcasts == 0 {
		t.Fatal("expected accepted seek to broadcast a snapshot")
	}
}

func TestBrokerStatsTracksClients(t *testing.T) {
	broker := testBroker(t)
	client := &Client{send: make(chan []byte, 1)}
	broker.clients[client] = true

	stats := broker.Stats()
	if stats.Clients != 1 {
		t.Fatalf("unexpected client count: %d", stats.Clients)
	}
	if stats.TurnCount != 0 {
		t.Fatalf("unexpected turn count: %d", stats.TurnCount)
	}
}
