// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/valyala/bytebufferpool"
)

// Binary frame tags. The layout is little-endian throughout: ids are 16 raw
// bytes, colors 4 bytes, floats IEEE-754 binary32, and sequence counts
// uint32. The layout must stay stable within a deployment; persisted
// snapshots reuse the same stroke encoding.
const (
	tagStrokeStart     = 0x01
	tagStrokePoints    = 0x02
	tagStrokeEnd       = 0x03
	tagErase           = 0x04
	tagRemove          = 0x05
	tagTransformStart  = 0x06
	tagTransformUpdate = 0x07
	tagTransformEnd    = 0x08
	tagClear           = 0x09
	tagUndo            = 0x0A
	tagRedo            = 0x0B
	tagLoad            = 0x0C
	tagSync            = 0x10
	tagStrokeRemove    = 0x11
	tagStrokeRestore   = 0x12
	tagStrokeReplace   = 0x13
)

// maxSeqLen bounds decoded sequence lengths so a hostile frame cannot make
// the server allocate unbounded memory.
const maxSeqLen = 1 << 20

// ErrTruncated is returned when a binary frame ends before its payload.
var ErrTruncated = errors.New("truncated frame")

// ErrTrailingBytes is returned when a binary frame has bytes past its
// payload.
var ErrTrailingBytes = errors.New("trailing bytes after frame")

// Decode parses an inbound frame. Text frames are parsed as the JSON
// fallback; binary frames as the canonical compact encoding.
func Decode(data []byte, text bool) (Message, error) {
	if text {
		return DecodeJSON(data)
	}
	return DecodeBinary(data)
}

// EncodeBinary encodes a message in the canonical binary framing. Outbound
// frames are always binary.
func EncodeBinary(msg Message) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	b := buf.B[:0]
	switch m := msg.(type) {
	case StrokeStart:
		b = append(b, tagStrokeStart)
		b = appendStroke(b, m.Stroke)
	case StrokePoints:
		b = append(b, tagStrokePoints)
		b = appendID(b, m.ID)
		b = appendPoints(b, m.Points)
	case StrokeEnd:
		b = append(b, tagStrokeEnd)
		b = appendID(b, m.ID)
	case Erase:
		b = append(b, tagErase)
		b = appendID(b, m.ID)
	case Remove:
		b = append(b, tagRemove)
		b = appendIDs(b, m.IDs)
	case TransformStart:
		b = append(b, tagTransformStart)
		b = appendIDs(b, m.IDs)
	case TransformUpdate:
		b = append(b, tagTransformUpdate)
		b = appendIDs(b, m.IDs)
		b = appendOp(b, m.Op)
	case TransformEnd:
		b = append(b, tagTransformEnd)
		b = appendIDs(b, m.IDs)
	case Clear:
		b = append(b, tagClear)
	case Undo:
		b = append(b, tagUndo)
	case Redo:
		b = append(b, tagRedo)
	case Load:
		b = append(b, tagLoad)
		b = appendStrokes(b, m.Strokes)
	case Sync:
		b = append(b, tagSync)
		b = appendStrokes(b, m.Strokes)
	case StrokeRemove:
		b = append(b, tagStrokeRemove)
		b = appendID(b, m.ID)
	case StrokeRestore:
		b = append(b, tagStrokeRestore)
		b = appendStroke(b, m.Stroke)
	case StrokeReplace:
		b = append(b, tagStrokeReplace)
		b = appendStroke(b, m.Stroke)
	default:
		// Unreachable: the message set is closed.
		panic(fmt.Sprintf("protocol: cannot encode %T", msg))
	}

	buf.B = b
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// DecodeBinary parses a canonical binary frame.
func DecodeBinary(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrTruncated
	}
	r := &byteReader{b: data, off: 1}

	var msg Message
	switch data[0] {
	case tagStrokeStart:
		msg = StrokeStart{Stroke: r.stroke()}
	case tagStrokePoints:
		msg = StrokePoints{ID: r.id(), Points: r.points()}
	case tagStrokeEnd:
		msg = StrokeEnd{ID: r.id()}
	case tagErase:
		msg = Erase{ID: r.id()}
	case tagRemove:
		msg = Remove{IDs: r.ids()}
	case tagTransformStart:
		msg = TransformStart{IDs: r.ids()}
	case tagTransformUpdate:
		msg = TransformUpdate{IDs: r.ids(), Op: r.op()}
	case tagTransformEnd:
		msg = TransformEnd{IDs: r.ids()}
	case tagClear:
		msg = Clear{}
	case tagUndo:
		msg = Undo{}
	case tagRedo:
		msg = Redo{}
	case tagLoad:
		msg = Load{Strokes: r.strokes()}
	case tagSync:
		msg = Sync{Strokes: r.strokes()}
	case tagStrokeRemove:
		msg = StrokeRemove{ID: r.id()}
	case tagStrokeRestore:
		msg = StrokeRestore{Stroke: r.stroke()}
	case tagStrokeReplace:
		msg = StrokeReplace{Stroke: r.stroke()}
	default:
		return nil, fmt.Errorf("unknown frame tag 0x%02x", data[0])
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.b) {
		return nil, ErrTrailingBytes
	}
	return msg, nil
}

// EncodeStrokes encodes a stroke sequence in the canonical layout. This is
// the persisted snapshot format.
func EncodeStrokes(strokes []Stroke) []byte {
	return appendStrokes(nil, strokes)
}

// DecodeStrokes parses a stroke sequence encoded by EncodeStrokes.
func DecodeStrokes(data []byte) ([]Stroke, error) {
	r := &byteReader{b: data}
	strokes := r.strokes()
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.b) {
		return nil, ErrTrailingBytes
	}
	return strokes, nil
}

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func appendF32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

func appendID(b []byte, id StrokeID) []byte {
	return append(b, id[:]...)
}

func appendIDs(b []byte, ids []StrokeID) []byte {
	b = appendU32(b, uint32(len(ids)))
	for _, id := range ids {
		b = appendID(b, id)
	}
	return b
}

func appendPoints(b []byte, points []Point) []byte {
	b = appendU32(b, uint32(len(points)))
	for _, p := range points {
		b = appendF32(b, p.X)
		b = appendF32(b, p.Y)
	}
	return b
}

func appendStroke(b []byte, s Stroke) []byte {
	b = appendID(b, s.ID)
	b = append(b, s.Color.R, s.Color.G, s.Color.B, s.Color.A)
	b = appendF32(b, s.Size)
	b = appendPoints(b, s.Points)
	return b
}

func appendStrokes(b []byte, strokes []Stroke) []byte {
	b = appendU32(b, uint32(len(strokes)))
	for _, s := range strokes {
		b = appendStroke(b, s)
	}
	return b
}

func appendOp(b []byte, op TransformOp) []byte {
	b = append(b, byte(op.Kind))
	switch op.Kind {
	case OpTranslate:
		b = appendF32(b, op.DX)
		b = appendF32(b, op.DY)
	case OpScaleUniform:
		b = appendF32(b, op.AnchorX)
		b = appendF32(b, op.AnchorY)
		b = appendF32(b, op.Factor)
	case OpScale:
		b = appendF32(b, op.AnchorX)
		b = appendF32(b, op.AnchorY)
		b = appendF32(b, op.SX)
		b = appendF32(b, op.SY)
	case OpRotate:
		b = appendF32(b, op.AnchorX)
		b = appendF32(b, op.AnchorY)
		b = appendF32(b, op.Angle)
	}
	return b
}

// byteReader walks a binary frame, latching the first error.
type byteReader struct {
	b   []byte
	off int
	err error
}

func (r *byteReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *byteReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.b)-r.off < n {
		r.fail(ErrTruncated)
		return nil
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out
}

func (r *byteReader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *byteReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *byteReader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *byteReader) count() int {
	n := r.u32()
	if n > maxSeqLen {
		r.fail(fmt.Errorf("sequence length %d exceeds limit", n))
		return 0
	}
	return int(n)
}

func (r *byteReader) id() StrokeID {
	var id StrokeID
	b := r.take(16)
	if b != nil {
		copy(id[:], b)
	}
	return id
}

func (r *byteReader) ids() []StrokeID {
	n := r.count()
	if r.err != nil || n == 0 {
		return nil
	}
	ids := make([]StrokeID, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		ids = append(ids, r.id())
	}
	return ids
}

func (r *byteReader) points() []Point {
	n := r.count()
	if r.err != nil || n == 0 {
		return nil
	}
	points := make([]Point, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		points = append(points, Point{X: r.f32(), Y: r.f32()})
	}
	return points
}

func (r *byteReader) stroke() Stroke {
	var s Stroke
	s.ID = r.id()
	rgba := r.take(4)
	if rgba != nil {
		s.Color = Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}
	s.Size = r.f32()
	s.Points = r.points()
	return s
}

func (r *byteReader) strokes() []Stroke {
	n := r.count()
	if r.err != nil || n == 0 {
		return nil
	}
	strokes := make([]Stroke, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		strokes = append(strokes, r.stroke())
	}
	return strokes
}

func (r *byteReader) op() TransformOp {
	var op TransformOp
	op.Kind = OpKind(r.u8())
	switch op.Kind {
	case OpTranslate:
		op.DX = r.f32()
		op.DY = r.f32()
	case OpScaleUniform:
		op.AnchorX = r.f32()
		op.AnchorY = r.f32()
		op.Factor = r.f32()
	case OpScale:
		op.AnchorX = r.f32()
		op.AnchorY = r.f32()
		op.SX = r.f32()
		op.SY = r.f32()
	case OpRotate:
		op.AnchorX = r.f32()
		op.AnchorY = r.f32()
		op.Angle = r.f32()
	default:
		r.fail(fmt.Errorf("unknown transform op kind 0x%02x", byte(op.Kind)))
	}
	return op
}
