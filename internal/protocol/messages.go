// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package protocol

// Message is one frame of the client/server protocol. The Type method
// returns the wire tag name ("stroke:start", "undo", ...), which is part of
// the wire contract and shared between the binary and JSON encodings.
type Message interface {
	Type() string
}

// Tag names for the message set.
const (
	TypeStrokeStart     = "stroke:start"
	TypeStrokePoints    = "stroke:points"
	TypeStrokeEnd       = "stroke:end"
	TypeErase           = "erase"
	TypeRemove          = "remove"
	TypeTransformStart  = "transform:start"
	TypeTransformUpdate = "transform:update"
	TypeTransformEnd    = "transform:end"
	TypeClear           = "clear"
	TypeUndo            = "undo"
	TypeRedo            = "redo"
	TypeLoad            = "load"
	TypeSync            = "sync"
	TypeStrokeRemove    = "stroke:remove"
	TypeStrokeRestore   = "stroke:restore"
	TypeStrokeReplace   = "stroke:replace"
)

// StrokeStart announces a new stroke. Sent by clients when a draw begins
// and relayed by the server to the other peers.
type StrokeStart struct {
	Stroke Stroke
}

// StrokePoints appends point samples to an active stroke.
type StrokePoints struct {
	ID     StrokeID
	Points []Point
}

// StrokeEnd finalizes an active stroke.
type StrokeEnd struct {
	ID StrokeID
}

// Erase removes a single stroke.
type Erase struct {
	ID StrokeID
}

// Remove removes a batch of strokes as one undoable action.
type Remove struct {
	IDs []StrokeID
}

// TransformStart opens a transform bracket over a set of strokes.
type TransformStart struct {
	IDs []StrokeID
}

// TransformUpdate carries live transform feedback during a drag. The op is
// cumulative since the matching TransformStart.
type TransformUpdate struct {
	IDs []StrokeID
	Op  TransformOp
}

// TransformEnd closes a transform bracket.
type TransformEnd struct {
	IDs []StrokeID
}

// Clear wipes the canvas.
type Clear struct{}

// Undo reverts the sender's most recent action.
type Undo struct{}

// Redo re-applies the sender's most recently undone action.
type Redo struct{}

// Load replaces the canvas contents wholesale.
type Load struct {
	Strokes []Stroke
}

// Sync is a full snapshot, sent to a peer on connect and broadcast after a
// Load.
type Sync struct {
	Strokes []Stroke
}

// StrokeRemove tells peers a stroke is gone.
type StrokeRemove struct {
	ID StrokeID
}

// StrokeRestore tells peers to re-add a stroke that was removed.
type StrokeRestore struct {
	Stroke Stroke
}

// StrokeReplace tells peers to replace a stroke's content in place.
type StrokeReplace struct {
	Stroke Stroke
}

func (StrokeStart) Type() string     { return TypeStrokeStart }
func (StrokePoints) Type() string    { return TypeStrokePoints }
func (StrokeEnd) Type() string       { return TypeStrokeEnd }
func (Erase) Type() string           { return TypeErase }
func (Remove) Type() string          { return TypeRemove }
func (TransformStart) Type() string  { return TypeTransformStart }
func (TransformUpdate) Type() string { return TypeTransformUpdate }
func (TransformEnd) Type() string    { return TypeTransformEnd }
func (Clear) Type() string           { return TypeClear }
func (Undo) Type() string            { return TypeUndo }
func (Redo) Type() string            { return TypeRedo }
func (Load) Type() string            { return TypeLoad }
func (Sync) Type() string            { return TypeSync }
func (StrokeRemove) Type() string    { return TypeStrokeRemove }
func (StrokeRestore) Type() string   { return TypeStrokeRestore }
func (StrokeReplace) Type() string   { return TypeStrokeReplace }
