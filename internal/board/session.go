// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"log"
	"sync"

	"github.com/wingedpig/whiteboard/internal/metrics"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// Session is one whiteboard instance: the canonical stroke list plus the
// per-connection bookkeeping around it. All fields are guarded by mu; the
// lock is held for command application only, never during fan-out.
type Session struct {
	ID string

	mu sync.Mutex

	// fanout orders enqueues onto peer queues: it is acquired before mu is
	// released, so every peer observes broadcasts in command-application
	// order while mu itself is never held during fan-out.
	fanout sync.Mutex

	strokes    []protocol.Stroke
	active     map[protocol.StrokeID]struct{}
	owners     map[protocol.StrokeID]ConnID
	histories  map[ConnID]*ClientHistory
	transforms map[ConnID]*TransformSession
	peers      map[ConnID]Sink
	dirty      bool
}

func newSession(id string, strokes []protocol.Stroke) *Session {
	return &Session{
		ID:         id,
		strokes:    strokes,
		active:     make(map[protocol.StrokeID]struct{}),
		owners:     make(map[protocol.StrokeID]ConnID),
		histories:  make(map[ConnID]*ClientHistory),
		transforms: make(map[ConnID]*TransformSession),
		peers:      make(map[ConnID]Sink),
	}
}

// Handle applies one inbound message from the given connection and fans the
// resulting frames out to the session's peers. The session lock is released
// before any frame is enqueued.
func (s *Session) Handle(conn ConnID, msg protocol.Message) {
	s.mu.Lock()
	out, dirty := s.apply(conn, msg)
	if dirty {
		s.dirty = true
	}
	peers := s.peerSnapshot()
	s.fanout.Lock()
	s.mu.Unlock()

	deliver(peers, conn, out)
	s.fanout.Unlock()
}

// peerSnapshot copies the peer map so fan-out can run without the lock.
// Callers must hold mu.
func (s *Session) peerSnapshot() map[ConnID]Sink {
	peers := make(map[ConnID]Sink, len(s.peers))
	for id, sink := range s.peers {
		peers[id] = sink
	}
	return peers
}

func deliver(peers map[ConnID]Sink, sender ConnID, out []Outbound) {
	for _, o := range out {
		frame := protocol.EncodeBinary(o.Msg)
		for id, sink := range peers {
			if o.Audience == AudienceOthers && id == sender {
				continue
			}
			if !sink.Send(frame) {
				metrics.DroppedPeers.Inc()
				log.Printf("session: peer %d outbound queue overflow, dropping", id)
				continue
			}
			metrics.FramesSent.Inc()
		}
	}
}

// attach registers a peer and queues a full snapshot for it alone. Callers
// serialize attach/detach through the store lock.
func (s *Session) attach(conn ConnID, sink Sink) {
	s.mu.Lock()
	s.peers[conn] = sink
	snap := protocol.Sync{Strokes: protocol.CloneStrokes(s.strokes)}
	s.fanout.Lock()
	s.mu.Unlock()

	if sink.Send(protocol.EncodeBinary(snap)) {
		metrics.FramesSent.Inc()
	} else {
		metrics.DroppedPeers.Inc()
	}
	s.fanout.Unlock()
}

// detach removes a peer and its per-connection state, reporting whether the
// session is now empty.
func (s *Session) detach(conn ConnID) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, conn)
	delete(s.histories, conn)
	delete(s.transforms, conn)
	return len(s.peers) == 0
}

// Strokes returns a deep copy of the canonical stroke list.
func (s *Session) Strokes() []protocol.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.CloneStrokes(s.strokes)
}

// Dirty reports whether the session has unpersisted mutations.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// history returns the connection's history, creating it on first use.
// Callers must hold mu.
func (s *Session) history(conn ConnID) *ClientHistory {
	h := s.histories[conn]
	if h == nil {
		h = &ClientHistory{}
		s.histories[conn] = h
	}
	return h
}

// indexOf returns the position of a stroke in the canonical list, or -1.
// Callers must hold mu.
func (s *Session) indexOf(id protocol.StrokeID) int {
	for i := range s.strokes {
		if s.strokes[i].ID == id {
			return i
		}
	}
	return -1
}

// removeAt removes the stroke at index i, preserving z-order. Callers must
// hold mu.
func (s *Session) removeAt(i int) protocol.Stroke {
	removed := s.strokes[i]
	s.strokes = append(s.strokes[:i], s.strokes[i+1:]...)
	return removed
}
