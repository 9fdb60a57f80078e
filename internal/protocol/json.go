// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"fmt"
)

// jsonFrame is the debug JSON envelope. It is accepted on inbound text
// frames only, but encoding is kept symmetric for tests and tooling. The
// tag names match the binary message set.
type jsonFrame struct {
	Type    string     `json:"type"`
	Stroke  *Stroke    `json:"stroke,omitempty"`
	ID      *StrokeID  `json:"id,omitempty"`
	IDs     []StrokeID `json:"ids,omitempty"`
	Points  []Point    `json:"points,omitempty"`
	Op      *jsonOp    `json:"op,omitempty"`
	Strokes []Stroke   `json:"strokes,omitempty"`
}

type jsonOp struct {
	Kind    string  `json:"kind"`
	DX      float32 `json:"dx,omitempty"`
	DY      float32 `json:"dy,omitempty"`
	AnchorX float32 `json:"ax,omitempty"`
	AnchorY float32 `json:"ay,omitempty"`
	Factor  float32 `json:"factor,omitempty"`
	SX      float32 `json:"sx,omitempty"`
	SY      float32 `json:"sy,omitempty"`
	Angle   float32 `json:"angle,omitempty"`
}

const (
	opNameTranslate    = "translate"
	opNameScaleUniform = "scale-uniform"
	opNameScale        = "scale"
	opNameRotate       = "rotate"
)

func opToJSON(op TransformOp) *jsonOp {
	j := &jsonOp{
		DX:      op.DX,
		DY:      op.DY,
		AnchorX: op.AnchorX,
		AnchorY: op.AnchorY,
		Factor:  op.Factor,
		SX:      op.SX,
		SY:      op.SY,
		Angle:   op.Angle,
	}
	switch op.Kind {
	case OpTranslate:
		j.Kind = opNameTranslate
	case OpScaleUniform:
		j.Kind = opNameScaleUniform
	case OpScale:
		j.Kind = opNameScale
	case OpRotate:
		j.Kind = opNameRotate
	}
	return j
}

func opFromJSON(j *jsonOp) (TransformOp, error) {
	op := TransformOp{
		DX:      j.DX,
		DY:      j.DY,
		AnchorX: j.AnchorX,
		AnchorY: j.AnchorY,
		Factor:  j.Factor,
		SX:      j.SX,
		SY:      j.SY,
		Angle:   j.Angle,
	}
	switch j.Kind {
	case opNameTranslate:
		op.Kind = OpTranslate
	case opNameScaleUniform:
		op.Kind = OpScaleUniform
	case opNameScale:
		op.Kind = OpScale
	case opNameRotate:
		op.Kind = OpRotate
	default:
		return op, fmt.Errorf("unknown transform op kind %q", j.Kind)
	}
	return op, nil
}

// DecodeJSON parses a text frame in the debug JSON form.
func DecodeJSON(data []byte) (Message, error) {
	var f jsonFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse json frame: %w", err)
	}

	switch f.Type {
	case TypeStrokeStart:
		if f.Stroke == nil {
			return nil, fmt.Errorf("%s: missing stroke", f.Type)
		}
		return StrokeStart{Stroke: *f.Stroke}, nil
	case TypeStrokePoints:
		if f.ID == nil {
			return nil, fmt.Errorf("%s: missing id", f.Type)
		}
		return StrokePoints{ID: *f.ID, Points: f.Points}, nil
	case TypeStrokeEnd:
		if f.ID == nil {
			return nil, fmt.Errorf("%s: missing id", f.Type)
		}
		return StrokeEnd{ID: *f.ID}, nil
	case TypeErase:
		if f.ID == nil {
			return nil, fmt.Errorf("%s: missing id", f.Type)
		}
		return Erase{ID: *f.ID}, nil
	case TypeRemove:
		return Remove{IDs: f.IDs}, nil
	case TypeTransformStart:
		return TransformStart{IDs: f.IDs}, nil
	case TypeTransformUpdate:
		if f.Op == nil {
			return nil, fmt.Errorf("%s: missing op", f.Type)
		}
		op, err := opFromJSON(f.Op)
		if err != nil {
			return nil, err
		}
		return TransformUpdate{IDs: f.IDs, Op: op}, nil
	case TypeTransformEnd:
		return TransformEnd{IDs: f.IDs}, nil
	case TypeClear:
		return Clear{}, nil
	case TypeUndo:
		return Undo{}, nil
	case TypeRedo:
		return Redo{}, nil
	case TypeLoad:
		return Load{Strokes: f.Strokes}, nil
	case TypeSync:
		return Sync{Strokes: f.Strokes}, nil
	case TypeStrokeRemove:
		if f.ID == nil {
			return nil, fmt.Errorf("%s: missing id", f.Type)
		}
		return StrokeRemove{ID: *f.ID}, nil
	case TypeStrokeRestore:
		if f.Stroke == nil {
			return nil, fmt.Errorf("%s: missing stroke", f.Type)
		}
		return StrokeRestore{Stroke: *f.Stroke}, nil
	case TypeStrokeReplace:
		if f.Stroke == nil {
			return nil, fmt.Errorf("%s: missing stroke", f.Type)
		}
		return StrokeReplace{Stroke: *f.Stroke}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", f.Type)
	}
}

// EncodeJSON encodes a message in the debug JSON form.
func EncodeJSON(msg Message) ([]byte, error) {
	f := jsonFrame{Type: msg.Type()}

	switch m := msg.(type) {
	case StrokeStart:
		s := m.Stroke
		f.Stroke = &s
	case StrokePoints:
		id := m.ID
		f.ID = &id
		f.Points = m.Points
	case StrokeEnd:
		id := m.ID
		f.ID = &id
	case Erase:
		id := m.ID
		f.ID = &id
	case Remove:
		f.IDs = m.IDs
	case TransformStart:
		f.IDs = m.IDs
	case TransformUpdate:
		f.IDs = m.IDs
		f.Op = opToJSON(m.Op)
	case TransformEnd:
		f.IDs = m.IDs
	case Clear, Undo, Redo:
	case Load:
		f.Strokes = m.Strokes
	case Sync:
		f.Strokes = m.Strokes
	case StrokeRemove:
		id := m.ID
		f.ID = &id
	case StrokeRestore:
		s := m.Stroke
		f.Stroke = &s
	case StrokeReplace:
		s := m.Stroke
		f.Stroke = &s
	default:
		return nil, fmt.Errorf("cannot encode %T", msg)
	}

	return json.Marshal(f)
}
