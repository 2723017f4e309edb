package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"awbrn/engine/internal/config"
	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/playback"
)

// Client is one connected viewer with its buffered outbound queue.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// seekRequest is the only control message viewers may send.
type seekRequest struct {
	Seek *int `json:"seek"`
}

// Broker advances the replay on a fixed cadence and fans the resulting
// snapshots out to every connected viewer.
type Broker struct {
	lock    sync.Mutex
	clients map[*Client]bool

	stateLock sync.Mutex
	state     *playback.State

	log          *logging.Logger
	upgrader     websocket.Upgrader
	maxClients   int
	maxPayload   int64
	pingInterval time.Duration
	broadcasts   int64
	started      time.Time
}

// BrokerStats summarises broker activity for the stats endpoint.
type BrokerStats struct {
	Clients    int   `json:"clients"`
	Broadcasts int64 `json:"broadcasts"`
	Turn       int   `json:"turn"`
	TurnCount  int   `json:"turn_count"`
}

// NewBroker wires a playback state into a fan-out broker.
func NewBroker(state *playback.State, cfg *config.Config, logger *logging.Logger) *Broker {
	if logger == nil {
		logger = logging.L()
	}
	broker := &Broker{
		clients:      make(map[*Client]bool),
		state:        state,
		log:          logger,
		maxClients:   cfg.MaxClients,
		maxPayload:   cfg.MaxPayloadBytes,
		pingInterval: cfg.PingInterval,
		started:      time.Now(),
	}
	broker.upgrader = websocket.Upgrader{
		CheckOrigin: originChecker(cfg.AllowedOrigins),
	}
	return broker
}

// originChecker admits every origin when none are configured, otherwise only
// the listed ones.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	permitted := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		permitted[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			//1.- Non-browser clients omit the header and are always admitted.
			return true
		}
		return permitted[origin]
	}
}

// Run broadcasts a snapshot per interval, advancing the replay each tick and
// looping back to the start once it is exhausted.
func (b *Broker) Run(ctx context.Context, interval time.Duration) {
	if b == nil || ctx == nil {
		return
	}
	if interval <= 0 {
		interval = config.DefaultTurnInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	//1.- Publish the starting position before the first tick fires.
	b.broadcastSnapshot()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.stateLock.Lock()
			if !b.state.Advance() {
				//2.- Loop the replay so late joiners still see every turn.
				b.state.Reset()
			}
			b.stateLock.Unlock()
			b.broadcastSnapshot()
		}
	}
}

// Seek repositions the replay and publishes the resulting position.
func (b *Broker) Seek(turn int) error {
	if b == nil {
		return nil
	}
	b.stateLock.Lock()
	err := b.state.Seek(turn)
	b.stateLock.Unlock()
	if err != nil {
		return err
	}
	b.broadcastSnapshot()
	return nil
}

// Stats reports a point-in-time view of broker activity.
func (b *Broker) Stats() BrokerStats {
	if b == nil {
		return BrokerStats{}
	}
	b.lock.Lock()
	clients := len(b.clients)
	broadcasts := b.broadcasts
	b.lock.Unlock()

	b.stateLock.Lock()
	turn := b.state.Turn()
	total := b.state.TurnCount()
	b.stateLock.Unlock()

	return BrokerStats{Clients: clients, Broadcasts: broadcasts, Turn: turn, TurnCount: total}
}

// ViewerCount reports the number of connected viewers.
func (b *Broker) ViewerCount() int {
	if b == nil {
		return 0
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.clients)
}

// Uptime reports how long the broker has been running.
func (b *Broker) Uptime() time.Duration {
	if b == nil {
		return 0
	}
	return time.Since(b.started)
}

// StartupError reports a failed startup. The broker is only constructed after
// the replay loads, so it never carries one.
func (b *Broker) StartupError() error { return nil }

// Playback reports the current playback position for metrics.
func (b *Broker) Playback() (turn, turnCount int, day uint32) {
	if b == nil {
		return 0, 0, 0
	}
	b.stateLock.Lock()
	defer b.stateLock.Unlock()
	return b.state.Turn(), b.state.TurnCount(), b.state.Day()
}

func (b *Broker) snapshotJSON() []byte {
	b.stateLock.Lock()
	snapshot := b.state.Snapshot()
	b.stateLock.Unlock()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		b.log.Error("encode snapshot failed", logging.Error(err))
		return nil
	}
	return payload
}

func (b *Broker) broadcastSnapshot() {
	if payload := b.snapshotJSON(); payload != nil {
		b.broadcast(payload)
	}
}

func (b *Broker) broadcast(msg []byte) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.broadcasts++
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			//1.- Drop viewers that cannot keep up instead of stalling the rest.
			close(c.send)
			delete(b.clients, c)
		}
	}
}

func (b *Broker) serveWS(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	if b.maxClients > 0 && len(b.clients) >= b.maxClients {
		b.lock.Unlock()
		http.Error(w, "viewer limit reached", http.StatusServiceUnavailable)
		return
	}
	b.lock.Unlock()

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	if b.maxPayload > 0 {
		conn.SetReadLimit(b.maxPayload)
	}

	client := &Client{conn: conn, send: make(chan []byte, 256), id: r.RemoteAddr}
	b.lock.Lock()
	b.clients[client] = true
	b.lock.Unlock()
	b.log.Info("viewer connected", logging.String("client", client.id))

	//1.- Greet the new viewer with the current position immediately.
	if payload := b.snapshotJSON(); payload != nil {
		client.send <- payload
	}

	// reader
	go func() {
		defer func() {
			b.lock.Lock()
			delete(b.clients, client)
			b.lock.Unlock()
			client.conn.Close()
			b.log.Info("viewer disconnected", logging.String("client", client.id))
		}()
		for {
			_, msg, err := client.conn.ReadMessage()
			if err != nil {
				return
			}
			//2.- Viewers may only request seeks; everything else is ignored.
			var request seekRequest
			if err := json.Unmarshal(msg, &request); err != nil || request.Seek == nil {
				continue
			}
			if err := b.Seek(*request.Seek); err != nil {
				b.log.Warn("seek rejected", logging.Error(err), logging.String("client", client.id))
			}
		}
	}()

	// writer
	go func() {
		ticker := time.NewTicker(b.pingInterval)
		defer func() {
			ticker.Stop()
			client.conn.Close()
		}()
		for {
			select {
			case msg, ok := <-client.send:
				if !ok {
					_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				_ = client.conn.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = client.conn.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()
}
