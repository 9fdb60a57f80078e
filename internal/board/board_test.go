// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// testSink collects the frames a peer would receive.
type testSink struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
}

func (s *testSink) Send(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.frames = append(s.frames, append([]byte(nil), frame...))
	return true
}

func (s *testSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

// messages decodes everything the sink received, in order.
func (s *testSink) messages(t *testing.T) []protocol.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []protocol.Message
	for _, frame := range s.frames {
		msg, err := protocol.DecodeBinary(frame)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

const (
	connA = ConnID(1)
	connB = ConnID(2)
	connC = ConnID(3)
)

// newTestSession returns a session with peers A and B attached and their
// connect-time sync frames already consumed.
func newTestSession(t *testing.T) (*Session, *testSink, *testSink) {
	t.Helper()
	s := newSession("test", nil)
	a, b := &testSink{}, &testSink{}
	s.attach(connA, a)
	s.attach(connB, b)
	a.reset()
	b.reset()
	return s, a, b
}

func pt(x, y float32) protocol.Point {
	return protocol.Point{X: x, Y: y}
}

func stroke(points ...protocol.Point) protocol.Stroke {
	return protocol.Stroke{
		ID:     protocol.NewStrokeID(),
		Color:  protocol.Color{R: 10, G: 20, B: 30, A: 255},
		Size:   2,
		Points: points,
	}
}

// drawStroke runs a full start/points/end exchange for conn.
func drawStroke(s *Session, conn ConnID, st protocol.Stroke) {
	shell := st
	shell.Points = nil
	s.Handle(conn, protocol.StrokeStart{Stroke: shell})
	if len(st.Points) > 0 {
		s.Handle(conn, protocol.StrokePoints{ID: st.ID, Points: st.Points})
	}
	s.Handle(conn, protocol.StrokeEnd{ID: st.ID})
}

func strokeIDs(strokes []protocol.Stroke) []protocol.StrokeID {
	ids := make([]protocol.StrokeID, len(strokes))
	for i, s := range strokes {
		ids[i] = s.ID
	}
	return ids
}
