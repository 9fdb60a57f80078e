// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"log"
	"sync"

	"github.com/wingedpig/whiteboard/internal/metrics"
)

// Store is the process-wide registry of live sessions. Sessions are created
// lazily on first attach (loading any snapshot from disk) and evicted when
// their last peer detaches. Attach and detach serialize through the store
// lock, which is always taken before a session's own lock.
type Store struct {
	mu       sync.RWMutex
	dir      string
	sessions map[string]*Session
}

// NewStore creates a session store persisting snapshots under dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		sessions: make(map[string]*Session),
	}
}

// Attach resolves the session for id, creating and loading it if needed,
// registers the peer, and queues a full snapshot for that peer alone.
func (st *Store) Attach(id string, conn ConnID, sink Sink) *Session {
	st.mu.Lock()
	sess := st.sessions[id]
	if sess == nil {
		sess = newSession(id, loadSnapshot(st.dir, id))
		st.sessions[id] = sess
		metrics.ActiveSessions.Set(float64(len(st.sessions)))
	}
	sess.attach(conn, sink)
	st.mu.Unlock()
	return sess
}

// Detach removes the peer from its session. When the last peer leaves, the
// session is persisted if dirty and evicted from the registry.
func (st *Store) Detach(sess *Session, conn ConnID) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !sess.detach(conn) {
		return
	}
	if err := sess.Persist(st.dir); err != nil {
		log.Printf("store: persist session %s on eviction: %v", sess.ID, err)
	}
	delete(st.sessions, sess.ID)
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
}

// Sessions returns a snapshot of the live session handles.
func (st *Store) Sessions() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess)
	}
	return out
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
