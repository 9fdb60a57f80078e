// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package board implements the authoritative whiteboard session engine:
// per-session canonical state, the command applier, per-connection
// undo/redo history, the session store, and snapshot persistence.
package board

import (
	"github.com/wingedpig/whiteboard/internal/protocol"
)

// ConnID identifies one attached peer. IDs are allocated from a
// process-wide counter and never reused within a server's lifetime.
type ConnID uint64

// Sink is the outbound-frame queue of one peer. Send must not block; it
// returns false when the peer's queue has overflowed, in which case the
// sink is expected to shut its connection down.
type Sink interface {
	Send(frame []byte) bool
}

// Audience selects which peers receive an outbound message.
type Audience uint8

const (
	// AudienceOthers delivers to every peer except the sender.
	AudienceOthers Audience = iota
	// AudienceAll delivers to every peer, the sender included.
	AudienceAll
)

// Outbound is one message produced by the command applier, paired with its
// delivery audience.
type Outbound struct {
	Audience Audience
	Msg      protocol.Message
}

// ActionKind discriminates history entries.
type ActionKind uint8

const (
	// ActionAddStroke records that the owner finished drawing a stroke.
	ActionAddStroke ActionKind = iota + 1
	// ActionRemoveStrokes records an erase or batch removal, with full
	// stroke snapshots so undo can restore them.
	ActionRemoveStrokes
	// ActionTransform records a transform bracket with before and after
	// snapshots of every affected stroke.
	ActionTransform
	// ActionReplaceStroke records a single stroke rewrite.
	ActionReplaceStroke
	// ActionClear records a canvas wipe with the full prior contents.
	ActionClear
)

// Action is one entry in a per-connection history stack. Actions carry
// value snapshots, never references into canonical state, so removals from
// the canvas do not invalidate them.
type Action struct {
	Kind ActionKind

	// ID is the stroke created by an AddStroke action.
	ID protocol.StrokeID
	// Stroke holds the AddStroke snapshot. It is captured when the action
	// is undone, so a later redo can restore the stroke without consulting
	// current state. Index preserves the stroke's z-position so redo puts
	// it back exactly where it was.
	Stroke protocol.Stroke
	Index  int

	// Strokes holds RemoveStrokes and Clear snapshots, in z-order for
	// Clear and removal order for RemoveStrokes.
	Strokes []protocol.Stroke

	// Before and After hold Transform and ReplaceStroke snapshots.
	// ReplaceStroke uses exactly one element on each side.
	Before []protocol.Stroke
	After  []protocol.Stroke
}

// maxHistoryDepth caps each stack of a connection's history. The oldest
// action is evicted, snapshots and all, when the cap is exceeded.
const maxHistoryDepth = 512

// ClientHistory is one connection's undo and redo stacks. Histories are
// in-memory only and die with the connection.
type ClientHistory struct {
	undo []Action
	redo []Action
}

func (h *ClientHistory) pushUndo(a Action) {
	h.undo = append(h.undo, a)
	if len(h.undo) > maxHistoryDepth {
		h.undo = h.undo[len(h.undo)-maxHistoryDepth:]
	}
}

func (h *ClientHistory) pushRedo(a Action) {
	h.redo = append(h.redo, a)
	if len(h.redo) > maxHistoryDepth {
		h.redo = h.redo[len(h.redo)-maxHistoryDepth:]
	}
}

func (h *ClientHistory) popUndo() (Action, bool) {
	if len(h.undo) == 0 {
		return Action{}, false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return a, true
}

func (h *ClientHistory) popRedo() (Action, bool) {
	if len(h.redo) == 0 {
		return Action{}, false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return a, true
}

func (h *ClientHistory) clearRedo() {
	h.redo = nil
}

// TransformSession brackets one connection's in-flight drag gesture. The
// before map snapshots each stroke at transform:start; lastOp tracks the
// cumulative op from the most recent transform:update so the server can
// derive the authoritative post-transform strokes at transform:end.
type TransformSession struct {
	ids    []protocol.StrokeID
	before map[protocol.StrokeID]protocol.Stroke
	lastOp *protocol.TransformOp
}
