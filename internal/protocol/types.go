// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the whiteboard data model and the client/server
// message set, with the canonical binary encoding and a JSON fallback.
package protocol

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// StrokeID identifies a stroke. IDs are generated by clients as random
// UUIDs; equality and hashing are bitwise, so StrokeID is usable as a map
// key.
type StrokeID uuid.UUID

// String returns the canonical UUID form of the id.
func (id StrokeID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler.
func (id StrokeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *StrokeID) UnmarshalText(data []byte) error {
	u, err := uuid.Parse(string(data))
	if err != nil {
		return fmt.Errorf("parse stroke id: %w", err)
	}
	*id = StrokeID(u)
	return nil
}

// NewStrokeID returns a fresh random stroke id. Clients normally generate
// ids themselves; this is used by tests and tooling.
func NewStrokeID() StrokeID {
	return StrokeID(uuid.New())
}

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Point is a coordinate pair in world space. The server never interprets
// coordinates; they are carried through verbatim.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Stroke is a polyline with color and width. Points may be empty while the
// stroke is still being drawn.
type Stroke struct {
	ID     StrokeID `json:"id"`
	Color  Color    `json:"color"`
	Size   float32  `json:"size"`
	Points []Point  `json:"points"`
}

// Clone returns a deep copy of the stroke. History snapshots must not share
// point storage with the canonical state.
func (s Stroke) Clone() Stroke {
	c := s
	if s.Points != nil {
		c.Points = make([]Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}

// CloneStrokes deep-copies a stroke sequence.
func CloneStrokes(strokes []Stroke) []Stroke {
	if strokes == nil {
		return nil
	}
	out := make([]Stroke, len(strokes))
	for i, s := range strokes {
		out[i] = s.Clone()
	}
	return out
}

// OpKind discriminates transform operations.
type OpKind uint8

const (
	OpTranslate OpKind = iota + 1
	OpScaleUniform
	OpScale
	OpRotate
)

// TransformOp describes a geometric transform applied to a set of strokes
// during a drag gesture. Which fields are meaningful depends on Kind:
// translate uses DX/DY, uniform scale uses AnchorX/AnchorY/Factor,
// non-uniform scale uses AnchorX/AnchorY/SX/SY, and rotate uses
// AnchorX/AnchorY (the pivot) and Angle in radians.
type TransformOp struct {
	Kind    OpKind
	DX, DY  float32
	AnchorX float32
	AnchorY float32
	Factor  float32
	SX, SY  float32
	Angle   float32
}

// ApplyPoint transforms a single point.
func (op TransformOp) ApplyPoint(p Point) Point {
	switch op.Kind {
	case OpTranslate:
		return Point{X: p.X + op.DX, Y: p.Y + op.DY}
	case OpScaleUniform:
		return Point{
			X: op.AnchorX + (p.X-op.AnchorX)*op.Factor,
			Y: op.AnchorY + (p.Y-op.AnchorY)*op.Factor,
		}
	case OpScale:
		return Point{
			X: op.AnchorX + (p.X-op.AnchorX)*op.SX,
			Y: op.AnchorY + (p.Y-op.AnchorY)*op.SY,
		}
	case OpRotate:
		sin, cos := sincos32(op.Angle)
		dx := p.X - op.AnchorX
		dy := p.Y - op.AnchorY
		return Point{
			X: op.AnchorX + dx*cos - dy*sin,
			Y: op.AnchorY + dx*sin + dy*cos,
		}
	default:
		return p
	}
}

func sincos32(angle float32) (sin, cos float32) {
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}

// ApplyStroke returns a copy of the stroke with the op applied to every
// point.
func (op TransformOp) ApplyStroke(s Stroke) Stroke {
	out := s
	out.Points = make([]Point, len(s.Points))
	for i, p := range s.Points {
		out.Points[i] = op.ApplyPoint(p)
	}
	return out
}
