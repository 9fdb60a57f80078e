// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/wingedpig/whiteboard/internal/board"
	"github.com/wingedpig/whiteboard/internal/metrics"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	// outboundQueueSize is the per-peer soft cap. A peer whose queue fills
	// up is disconnected rather than allowed to stall the others.
	outboundQueueSize = 256

	maxFrameSize = 1 << 20

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// nextConnID allocates connection ids, unique for the server's lifetime.
var nextConnID atomic.Uint64

// BoardHandler owns the WebSocket surface of the whiteboard.
type BoardHandler struct {
	store *board.Store
}

// NewBoardHandler creates a new board handler over the session store.
func NewBoardHandler(store *board.Store) *BoardHandler {
	return &BoardHandler{store: store}
}

// peer is one attached client: its connection and outbound frame queue. The
// write loop is the only goroutine touching the connection for writes.
type peer struct {
	id        board.ConnID
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Send enqueues a frame for delivery. It never blocks: when the queue is
// full the peer is shut down and false is returned, leaving other peers
// unaffected.
func (p *peer) Send(frame []byte) bool {
	select {
	case p.send <- frame:
		return true
	default:
		p.close()
		return false
	}
}

func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.conn.Close()
	})
}

// writeLoop drains the outbound queue onto the connection, keeping the
// peer alive with pings.
func (p *peer) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer p.close()

	for {
		select {
		case frame := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.done:
			return
		}
	}
}

// WebSocket upgrades the connection and runs the peer's read loop. Each
// connection gets a reader (this handler goroutine) and a writer goroutine;
// decode failures drop the frame and keep the connection up.
func (h *BoardHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := canonicalSessionID(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	p := &peer{
		id:   board.ConnID(nextConnID.Add(1)),
		conn: conn,
		send: make(chan []byte, outboundQueueSize),
		done: make(chan struct{}),
	}

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	metrics.ConnectionsTotal.Inc()
	metrics.ActiveConnections.Inc()

	sess := h.store.Attach(sessionID, p.id, p)
	go p.writeLoop()

	defer func() {
		h.store.Detach(sess, p.id)
		p.close()
		metrics.ActiveConnections.Dec()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.Decode(data, messageType == websocket.TextMessage)
		if err != nil {
			metrics.DecodeErrors.Inc()
			log.Printf("ws: session %s conn %d: dropping undecodable frame: %v", sessionID, p.id, err)
			continue
		}

		metrics.MessagesReceived.WithLabelValues(msg.Type()).Inc()
		sess.Handle(p.id, msg)
	}
}
