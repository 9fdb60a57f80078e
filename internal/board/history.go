// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// applyUndo pops the sender's most recent action and applies its inverse.
// Actions whose referenced strokes have all gone missing (for example after
// another connection's clear) are discarded silently and the next entry is
// tried; the loop is bounded by the stack depth. Undo results are broadcast
// to every peer, the sender included, so the sender observes the canonical
// outcome. Callers must hold mu.
func (s *Session) applyUndo(conn ConnID) ([]Outbound, bool) {
	h := s.histories[conn]
	if h == nil {
		return nil, false
	}
	for {
		a, ok := h.popUndo()
		if !ok {
			return nil, false
		}
		out, applied := s.invertAction(conn, &a)
		if !applied {
			continue
		}
		h.pushRedo(a)
		return out, true
	}
}

// applyRedo is symmetric to applyUndo over the redo stack.
func (s *Session) applyRedo(conn ConnID) ([]Outbound, bool) {
	h := s.histories[conn]
	if h == nil {
		return nil, false
	}
	for {
		a, ok := h.popRedo()
		if !ok {
			return nil, false
		}
		out, applied := s.reapplyAction(conn, &a)
		if !applied {
			continue
		}
		h.pushUndo(a)
		return out, true
	}
}

// invertAction applies the inverse of a history entry. It may update the
// action in place (AddStroke captures the removed stroke for redo). Returns
// applied=false when the entry is a stale no-op.
func (s *Session) invertAction(conn ConnID, a *Action) (out []Outbound, applied bool) {
	switch a.Kind {
	case ActionAddStroke:
		i := s.indexOf(a.ID)
		if i == -1 {
			return nil, false
		}
		a.Stroke = s.removeAt(i).Clone()
		a.Index = i
		delete(s.active, a.ID)
		return []Outbound{{AudienceAll, protocol.StrokeRemove{ID: a.ID}}}, true

	case ActionRemoveStrokes:
		for _, st := range a.Strokes {
			if s.indexOf(st.ID) != -1 {
				continue
			}
			s.strokes = append(s.strokes, st.Clone())
			out = append(out, Outbound{AudienceAll, protocol.StrokeRestore{Stroke: st.Clone()}})
		}
		return out, len(out) > 0

	case ActionTransform:
		return s.replaceAll(a.Before)

	case ActionReplaceStroke:
		return s.replaceAll(a.Before)

	case ActionClear:
		for _, st := range a.Strokes {
			if s.indexOf(st.ID) != -1 {
				continue
			}
			s.strokes = append(s.strokes, st.Clone())
			out = append(out, Outbound{AudienceAll, protocol.StrokeRestore{Stroke: st.Clone()}})
		}
		return out, len(out) > 0

	default:
		return nil, false
	}
}

// reapplyAction re-applies a previously undone history entry.
func (s *Session) reapplyAction(conn ConnID, a *Action) (out []Outbound, applied bool) {
	switch a.Kind {
	case ActionAddStroke:
		if s.indexOf(a.ID) != -1 {
			return nil, false
		}
		i := a.Index
		if i > len(s.strokes) {
			i = len(s.strokes)
		}
		s.strokes = append(s.strokes[:i], append([]protocol.Stroke{a.Stroke.Clone()}, s.strokes[i:]...)...)
		s.owners[a.ID] = conn
		return []Outbound{{AudienceAll, protocol.StrokeRestore{Stroke: a.Stroke.Clone()}}}, true

	case ActionRemoveStrokes:
		for _, st := range a.Strokes {
			i := s.indexOf(st.ID)
			if i == -1 {
				continue
			}
			s.removeAt(i)
			delete(s.active, st.ID)
			out = append(out, Outbound{AudienceAll, protocol.StrokeRemove{ID: st.ID}})
		}
		return out, len(out) > 0

	case ActionTransform:
		return s.replaceAll(a.After)

	case ActionReplaceStroke:
		return s.replaceAll(a.After)

	case ActionClear:
		if len(s.strokes) == 0 {
			return nil, false
		}
		// Re-snapshot so a later undo restores exactly what this redo
		// wiped, including strokes drawn since the original clear.
		a.Strokes = protocol.CloneStrokes(s.strokes)
		s.strokes = nil
		s.active = make(map[protocol.StrokeID]struct{})
		s.owners = make(map[protocol.StrokeID]ConnID)
		return []Outbound{{AudienceAll, protocol.Clear{}}}, true

	default:
		return nil, false
	}
}

// replaceAll writes the given stroke values over their canonical
// counterparts, emitting a stroke:replace for each one found.
func (s *Session) replaceAll(values []protocol.Stroke) (out []Outbound, applied bool) {
	for _, st := range values {
		i := s.indexOf(st.ID)
		if i == -1 {
			continue
		}
		s.strokes[i] = st.Clone()
		out = append(out, Outbound{AudienceAll, protocol.StrokeReplace{Stroke: st.Clone()}})
	}
	return out, len(out) > 0
}
