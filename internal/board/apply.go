// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// apply is the command applier: it maps one inbound message to a state
// mutation plus the outbound messages to fan out. Invariant-violating
// messages (unknown ids, inactive strokes) are dropped without error; they
// are expected during races between peers. Callers must hold mu.
func (s *Session) apply(conn ConnID, msg protocol.Message) (out []Outbound, dirty bool) {
	switch m := msg.(type) {
	case protocol.StrokeStart:
		return s.applyStrokeStart(conn, m)
	case protocol.StrokePoints:
		return s.applyStrokePoints(m)
	case protocol.StrokeEnd:
		return s.applyStrokeEnd(m)
	case protocol.Erase:
		return s.applyRemove(conn, []protocol.StrokeID{m.ID})
	case protocol.Remove:
		return s.applyRemove(conn, m.IDs)
	case protocol.TransformStart:
		return s.applyTransformStart(conn, m)
	case protocol.TransformUpdate:
		return s.applyTransformUpdate(conn, m)
	case protocol.TransformEnd:
		return s.applyTransformEnd(conn)
	case protocol.Clear:
		return s.applyClear(conn)
	case protocol.Undo:
		return s.applyUndo(conn)
	case protocol.Redo:
		return s.applyRedo(conn)
	case protocol.Load:
		return s.applyLoad(m)
	default:
		// Server-to-client message types arriving inbound are dropped.
		return nil, false
	}
}

func (s *Session) applyStrokeStart(conn ConnID, m protocol.StrokeStart) ([]Outbound, bool) {
	if s.indexOf(m.Stroke.ID) != -1 {
		return nil, false
	}
	stroke := m.Stroke.Clone()
	// A reused id belongs to its new owner alone: other connections drop
	// any AddStroke entries they still hold for it.
	for other, h := range s.histories {
		if other == conn {
			continue
		}
		for _, stack := range []*[]Action{&h.undo, &h.redo} {
			kept := (*stack)[:0]
			for _, a := range *stack {
				if a.Kind != ActionAddStroke || a.ID != stroke.ID {
					kept = append(kept, a)
				}
			}
			*stack = kept
		}
	}
	s.strokes = append(s.strokes, stroke)
	s.active[stroke.ID] = struct{}{}
	s.owners[stroke.ID] = conn
	return []Outbound{{AudienceOthers, protocol.StrokeStart{Stroke: stroke.Clone()}}}, true
}

func (s *Session) applyStrokePoints(m protocol.StrokePoints) ([]Outbound, bool) {
	if _, ok := s.active[m.ID]; !ok {
		return nil, false
	}
	i := s.indexOf(m.ID)
	if i == -1 {
		return nil, false
	}
	s.strokes[i].Points = append(s.strokes[i].Points, m.Points...)
	return []Outbound{{AudienceOthers, m}}, true
}

func (s *Session) applyStrokeEnd(m protocol.StrokeEnd) ([]Outbound, bool) {
	if _, ok := s.active[m.ID]; !ok {
		return nil, false
	}
	delete(s.active, m.ID)

	i := s.indexOf(m.ID)
	if i == -1 {
		return nil, false
	}
	if len(s.strokes[i].Points) == 0 {
		// An empty stroke never becomes canvas content.
		s.removeAt(i)
		delete(s.owners, m.ID)
		return []Outbound{{AudienceOthers, m}}, true
	}

	owner := s.owners[m.ID]
	h := s.history(owner)
	h.pushUndo(Action{Kind: ActionAddStroke, ID: m.ID})
	h.clearRedo()
	return []Outbound{{AudienceOthers, m}}, true
}

func (s *Session) applyRemove(conn ConnID, ids []protocol.StrokeID) ([]Outbound, bool) {
	var out []Outbound
	var snapshots []protocol.Stroke
	for _, id := range ids {
		i := s.indexOf(id)
		if i == -1 {
			continue
		}
		removed := s.removeAt(i)
		delete(s.active, id)
		snapshots = append(snapshots, removed.Clone())
		out = append(out, Outbound{AudienceOthers, protocol.StrokeRemove{ID: id}})
	}
	if len(snapshots) == 0 {
		return nil, false
	}
	h := s.history(conn)
	h.pushUndo(Action{Kind: ActionRemoveStrokes, Strokes: snapshots})
	h.clearRedo()
	return out, true
}

func (s *Session) applyTransformStart(conn ConnID, m protocol.TransformStart) ([]Outbound, bool) {
	ts := &TransformSession{before: make(map[protocol.StrokeID]protocol.Stroke)}
	for _, id := range m.IDs {
		if _, ok := ts.before[id]; ok {
			continue
		}
		i := s.indexOf(id)
		if i == -1 {
			continue
		}
		ts.ids = append(ts.ids, id)
		ts.before[id] = s.strokes[i].Clone()
	}
	// Overwrites any prior bracket for this connection.
	s.transforms[conn] = ts
	return nil, false
}

func (s *Session) applyTransformUpdate(conn ConnID, m protocol.TransformUpdate) ([]Outbound, bool) {
	// Pass-through broadcast; canonical state is untouched until
	// transform:end. The op is cumulative since transform:start, so only
	// the latest one is retained.
	if ts := s.transforms[conn]; ts != nil {
		op := m.Op
		ts.lastOp = &op
	}
	return []Outbound{{AudienceOthers, m}}, false
}

func (s *Session) applyTransformEnd(conn ConnID) ([]Outbound, bool) {
	ts := s.transforms[conn]
	if ts == nil {
		return nil, false
	}
	delete(s.transforms, conn)
	if ts.lastOp == nil {
		// The drag never moved anything.
		return nil, false
	}

	// The server is authoritative for post-transform points: re-apply the
	// cumulative op to the start-of-drag snapshots. Ids that disappeared
	// mid-drag are dropped from both sides.
	var before, after []protocol.Stroke
	for _, id := range ts.ids {
		i := s.indexOf(id)
		if i == -1 {
			continue
		}
		b := ts.before[id]
		a := ts.lastOp.ApplyStroke(b)
		s.strokes[i] = a.Clone()
		before = append(before, b)
		after = append(after, a)
	}
	if len(before) == 0 {
		return nil, false
	}

	h := s.history(conn)
	h.pushUndo(Action{Kind: ActionTransform, Before: before, After: after})
	h.clearRedo()
	// No broadcast: peers already applied the live transform:update stream.
	return nil, true
}

func (s *Session) applyClear(conn ConnID) ([]Outbound, bool) {
	if len(s.strokes) == 0 {
		return nil, false
	}
	snapshots := protocol.CloneStrokes(s.strokes)
	s.strokes = nil
	s.active = make(map[protocol.StrokeID]struct{})
	s.owners = make(map[protocol.StrokeID]ConnID)

	// Only the sender's history records the clear. Other connections keep
	// entries referencing the wiped strokes; those entries become silent
	// no-ops on their next undo.
	h := s.history(conn)
	h.pushUndo(Action{Kind: ActionClear, Strokes: snapshots})
	h.clearRedo()
	return []Outbound{{AudienceOthers, protocol.Clear{}}}, true
}

func (s *Session) applyLoad(m protocol.Load) ([]Outbound, bool) {
	// Wholesale replace. Loaded strokes are unowned: nobody can undo them
	// until they are redrawn, and all histories and in-flight transforms
	// are discarded.
	seen := make(map[protocol.StrokeID]struct{}, len(m.Strokes))
	strokes := make([]protocol.Stroke, 0, len(m.Strokes))
	for _, st := range m.Strokes {
		if _, dup := seen[st.ID]; dup {
			continue
		}
		seen[st.ID] = struct{}{}
		strokes = append(strokes, st.Clone())
	}

	s.strokes = strokes
	s.active = make(map[protocol.StrokeID]struct{})
	s.owners = make(map[protocol.StrokeID]ConnID)
	s.histories = make(map[ConnID]*ClientHistory)
	s.transforms = make(map[ConnID]*TransformSession)

	return []Outbound{{AudienceAll, protocol.Sync{Strokes: protocol.CloneStrokes(strokes)}}}, true
}
