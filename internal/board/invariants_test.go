// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// TestInvariants_RandomStreams drives a session with arbitrary interleaved
// message streams from three connections and checks the structural
// invariants after every single application. The seed is fixed so failures
// reproduce.
func TestInvariants_RandomStreams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	s := newSession("fuzz", nil)
	sinks := map[ConnID]*testSink{connA: {}, connB: {}, connC: {}}
	for conn, sink := range sinks {
		s.attach(conn, sink)
	}

	conns := []ConnID{connA, connB, connC}

	// A small id pool so streams collide: duplicate starts, erases of
	// unknown ids, points for foreign strokes.
	pool := make([]protocol.StrokeID, 8)
	for i := range pool {
		pool[i] = protocol.NewStrokeID()
	}
	pick := func() protocol.StrokeID { return pool[rng.Intn(len(pool))] }
	pickIDs := func() []protocol.StrokeID {
		n := rng.Intn(3) + 1
		ids := make([]protocol.StrokeID, n)
		for i := range ids {
			ids[i] = pick()
		}
		return ids
	}
	randOp := func() protocol.TransformOp {
		switch rng.Intn(4) {
		case 0:
			return protocol.TransformOp{Kind: protocol.OpTranslate, DX: rng.Float32() * 10, DY: rng.Float32() * 10}
		case 1:
			return protocol.TransformOp{Kind: protocol.OpScaleUniform, AnchorX: 5, AnchorY: 5, Factor: 1 + rng.Float32()}
		case 2:
			return protocol.TransformOp{Kind: protocol.OpScale, AnchorX: 1, AnchorY: 1, SX: 2, SY: 0.5}
		default:
			return protocol.TransformOp{Kind: protocol.OpRotate, AnchorX: 0, AnchorY: 0, Angle: rng.Float32() * 6}
		}
	}

	randMsg := func() protocol.Message {
		switch rng.Intn(12) {
		case 0:
			return protocol.StrokeStart{Stroke: protocol.Stroke{ID: pick(), Size: 1}}
		case 1:
			return protocol.StrokePoints{ID: pick(), Points: []protocol.Point{pt(rng.Float32(), rng.Float32())}}
		case 2:
			return protocol.StrokeEnd{ID: pick()}
		case 3:
			return protocol.Erase{ID: pick()}
		case 4:
			return protocol.Remove{IDs: pickIDs()}
		case 5:
			return protocol.TransformStart{IDs: pickIDs()}
		case 6:
			return protocol.TransformUpdate{IDs: pickIDs(), Op: randOp()}
		case 7:
			return protocol.TransformEnd{IDs: pickIDs()}
		case 8:
			return protocol.Undo{}
		case 9:
			return protocol.Redo{}
		case 10:
			return protocol.Clear{}
		default:
			return protocol.StrokePoints{ID: pick(), Points: nil}
		}
	}

	for i := 0; i < 5000; i++ {
		conn := conns[rng.Intn(len(conns))]
		msg := randMsg()
		s.Handle(conn, msg)
		checkInvariants(t, s, msg, i)
		if t.Failed() {
			return
		}
	}
}

func checkInvariants(t *testing.T, s *Session, msg protocol.Message, step int) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	// No stroke id appears more than once in canonical state.
	seen := make(map[protocol.StrokeID]struct{}, len(s.strokes))
	for _, st := range s.strokes {
		if _, dup := seen[st.ID]; dup {
			t.Fatalf("step %d (%s): duplicate stroke %s", step, msg.Type(), st.ID)
		}
		seen[st.ID] = struct{}{}
	}

	// Every active id is on the canvas exactly once.
	for id := range s.active {
		if _, ok := seen[id]; !ok {
			t.Fatalf("step %d (%s): active id %s not in strokes", step, msg.Type(), id)
		}
	}

	// AddStroke entries only ever sit on the owner's stack.
	for conn, h := range s.histories {
		for _, stacks := range [][]Action{h.undo, h.redo} {
			for _, a := range stacks {
				if a.Kind != ActionAddStroke {
					continue
				}
				if owner, ok := s.owners[a.ID]; ok && owner != conn {
					t.Fatalf("step %d: conn %d holds AddStroke for stroke owned by %d", step, conn, owner)
				}
			}
		}
	}
}

// TestTransformEndClearsBracket pins the invariant that no transform
// session survives its transform:end, whatever the bracket contained.
func TestTransformEndClearsBracket(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := newSession("brackets", nil)
	s.attach(connA, &testSink{})

	for i := 0; i < 100; i++ {
		st := stroke(pt(rng.Float32(), rng.Float32()))
		drawStroke(s, connA, st)
		ids := []protocol.StrokeID{st.ID}

		s.Handle(connA, protocol.TransformStart{IDs: ids})
		if rng.Intn(2) == 0 {
			s.Handle(connA, protocol.TransformUpdate{IDs: ids, Op: protocol.TransformOp{Kind: protocol.OpTranslate, DX: 1}})
		}
		s.Handle(connA, protocol.TransformEnd{IDs: ids})

		require.Nil(t, s.transforms[connA], "iteration %d", i)
	}
}
