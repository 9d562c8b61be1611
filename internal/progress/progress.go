// Package progress implements the external ProgressReporter collaborator
// interface from spec.md §6: best-effort, ordered delivery of per-simulation
// progress and timing samples to any number of subscribers, over a
// gorilla/mux-routed HTTP server and gorilla/websocket connections — the
// push-fanout idiom grounded on
// jontk-slurm-client/pkg/streaming/websocket.go's WebSocketServer, adapted
// from "stream SLURM events to one client" to "broadcast simulator progress
// to every connected client".
package progress

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Message is one progress sample pushed to subscribers. Exactly one of
// Percent or (WallSeconds, SimSeconds) is populated per send, matching the
// two distinct calls the spec's ProgressReporter contract exposes.
type Message struct {
	SimID       string    `json:"sim_id"`
	Kind        string    `json:"kind"` // "percent" or "times"
	Percent     float64   `json:"percent,omitempty"`
	WallSeconds float64   `json:"wall_seconds,omitempty"`
	SimSeconds  float64   `json:"sim_seconds,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Reporter fans out progress messages to every currently-connected
// WebSocket subscriber. Sends are best-effort per spec.md §7's "Best-effort
// I/O": a slow or gone subscriber never blocks the simulation loop, and a
// send failure is logged, not propagated.
type Reporter struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	out  chan Message
}

// NewReporter constructs a Reporter with its HTTP upgrader configured for
// same-origin-agnostic use (the simulator is a trusted internal tool, not a
// public service — see jontk-slurm-client's identical CheckOrigin stance).
func NewReporter() *Reporter {
	return &Reporter{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// Router returns a gorilla/mux router serving /progress/{sim_id} for
// subscribers, per SPEC_FULL.md's progress-bridge wiring. sim_id is
// currently informational (it namespaces the subscription in the URL); all
// subscribers receive every broadcast sample, filtered client-side by
// Message.SimID.
func (r *Reporter) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/progress/{sim_id}", r.handleWebSocket)
	return router
}

func (r *Reporter) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("progress: websocket upgrade error: %v", err)
		return
	}

	sub := &subscriber{conn: conn, out: make(chan Message, 64)}
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()

	go r.writeLoop(sub)

	// Read (and discard) incoming frames so a client disconnect is noticed
	// even while no report is being sent: on the first read error the
	// subscriber is deregistered and its channel closed, ending writeLoop.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				r.mu.Lock()
				delete(r.subs, sub)
				close(sub.out)
				r.mu.Unlock()
				return
			}
		}
	}()
}

// writeLoop drains sub.out in FIFO order (spec.md §6's "ordered emit") and
// writes each message over the socket; it exits (and deregisters the
// subscriber) on the first write error, which is the common case for a
// client that went away.
func (r *Reporter) writeLoop(sub *subscriber) {
	defer func() {
		r.mu.Lock()
		delete(r.subs, sub)
		r.mu.Unlock()
		sub.conn.Close() //nolint:errcheck // best-effort cleanup
	}()

	for msg := range sub.out {
		if err := sub.conn.WriteJSON(msg); err != nil {
			log.Printf("progress: websocket write error: %v", err)
			return
		}
	}
}

// broadcast enqueues msg on every subscriber's outbound channel,
// non-blocking: a subscriber whose channel is already full is considered
// unresponsive and the sample is dropped for it, per spec.md §7's "lost
// reports are acceptable".
func (r *Reporter) broadcast(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sub := range r.subs {
		select {
		case sub.out <- msg:
		default:
			log.Printf("progress: dropping report for sim %s: subscriber backlogged", msg.SimID)
		}
	}
}

// Report implements ProgressReporter.report(sim_id, percent).
func (r *Reporter) Report(simID string, percent float64) {
	r.broadcast(Message{SimID: simID, Kind: "percent", Percent: percent, SentAt: time.Now()})
}

// ReportTimes implements ProgressReporter.report_times(sim_id, wall, sim).
func (r *Reporter) ReportTimes(simID string, wallSeconds, simSeconds float64) {
	r.broadcast(Message{SimID: simID, Kind: "times", WallSeconds: wallSeconds, SimSeconds: simSeconds, SentAt: time.Now()})
}

// subscriberCount reports the current number of live subscribers, for tests.
func (r *Reporter) subscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
