// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

const testSessionID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

func TestStore_AttachSendsSync(t *testing.T) {
	store := NewStore(t.TempDir())

	sink := &testSink{}
	sess := store.Attach(testSessionID, connA, sink)
	require.NotNil(t, sess)
	assert.Equal(t, 1, store.Len())

	msgs := sink.messages(t)
	require.Len(t, msgs, 1)
	snap, ok := msgs[0].(protocol.Sync)
	require.True(t, ok)
	assert.Empty(t, snap.Strokes)
}

func TestStore_SecondAttachSharesSession(t *testing.T) {
	store := NewStore(t.TempDir())

	s1 := store.Attach(testSessionID, connA, &testSink{})
	s2 := store.Attach(testSessionID, connB, &testSink{})

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, store.Len())
}

func TestStore_DetachEvictsAndPersists(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	sess := store.Attach(testSessionID, connA, &testSink{})
	drawStroke(sess, connA, stroke(pt(1, 1)))

	store.Detach(sess, connA)
	assert.Equal(t, 0, store.Len())

	// The dirty session was persisted on eviction.
	_, err := os.Stat(snapshotPath(dir, testSessionID))
	assert.NoError(t, err)
}

func TestStore_DetachKeepsSessionWithPeersLeft(t *testing.T) {
	store := NewStore(t.TempDir())

	sess := store.Attach(testSessionID, connA, &testSink{})
	store.Attach(testSessionID, connB, &testSink{})

	store.Detach(sess, connA)
	assert.Equal(t, 1, store.Len())

	// A's per-connection state is gone, B's remains reachable.
	sess.mu.Lock()
	_, hasA := sess.peers[connA]
	_, hasB := sess.peers[connB]
	sess.mu.Unlock()
	assert.False(t, hasA)
	assert.True(t, hasB)
}

func TestStore_ReloadsSnapshotAfterRestart(t *testing.T) {
	dir := t.TempDir()

	// First lifetime: draw and disconnect.
	store := NewStore(dir)
	sess := store.Attach(testSessionID, connA, &testSink{})
	st := stroke(pt(1, 1), pt(2, 2))
	drawStroke(sess, connA, st)
	store.Detach(sess, connA)

	// Second lifetime: a fresh store (as after a server restart) serves
	// the persisted strokes in the connect-time sync.
	store2 := NewStore(dir)
	sink := &testSink{}
	store2.Attach(testSessionID, connA, sink)

	msgs := sink.messages(t)
	require.Len(t, msgs, 1)
	snap, ok := msgs[0].(protocol.Sync)
	require.True(t, ok)
	require.Len(t, snap.Strokes, 1)
	assert.Equal(t, st.ID, snap.Strokes[0].ID)
	assert.Equal(t, st.Points, snap.Strokes[0].Points)
}

func TestStore_DetachDropsConnectionState(t *testing.T) {
	store := NewStore(t.TempDir())

	sess := store.Attach(testSessionID, connA, &testSink{})
	store.Attach(testSessionID, connB, &testSink{})

	st := stroke(pt(1, 1))
	drawStroke(sess, connA, st)
	sess.Handle(connA, protocol.TransformStart{IDs: []protocol.StrokeID{st.ID}})

	store.Detach(sess, connA)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	assert.Nil(t, sess.histories[connA])
	assert.Nil(t, sess.transforms[connA])
}

func TestPeerOverflowDropsOnlyThatPeer(t *testing.T) {
	s := newSession("overflow", nil)
	healthy := &testSink{}
	jammed := &testSink{full: true}
	s.attach(connA, healthy)
	s.attach(connB, jammed)
	healthy.reset()

	drawStroke(s, connA, stroke(pt(1, 1)))

	// The healthy peer saw nothing of B's overflow; B simply got dropped
	// frames. (Its reader will observe the close and detach.)
	assert.Empty(t, healthy.messages(t))

	s.Handle(connB, protocol.Erase{ID: s.Strokes()[0].ID})
	assert.Len(t, healthy.messages(t), 1)
}
