// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wingedpig/whiteboard/internal/metrics"
	"github.com/wingedpig/whiteboard/internal/protocol"
)

func snapshotPath(dir, id string) string {
	return filepath.Join(dir, id+".bin")
}

// loadSnapshot reads a session's persisted strokes. A missing file is an
// empty session; a corrupt file is logged and treated as empty.
func loadSnapshot(dir, id string) []protocol.Stroke {
	data, err := os.ReadFile(snapshotPath(dir, id))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("persist: read snapshot %s: %v", id, err)
		}
		return nil
	}
	strokes, err := protocol.DecodeStrokes(data)
	if err != nil {
		log.Printf("persist: corrupt snapshot %s, starting empty: %v", id, err)
		return nil
	}
	return strokes
}

// Persist writes the session's strokes to dir if the session is dirty,
// using write-temp, fsync, atomic-rename. Only the canonical stroke list is
// persisted; histories, ownership, and active ids are in-memory only. On
// error the dirty flag stays set so the next pass retries.
func (s *Session) Persist(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	data := protocol.EncodeStrokes(s.strokes)
	tmpPath := filepath.Join(dir, s.ID+".tmp")

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, snapshotPath(dir, s.ID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	s.dirty = false
	return nil
}

// Persister periodically writes dirty sessions to disk.
type Persister struct {
	store    *Store
	dir      string
	interval time.Duration
}

// NewPersister creates a persistence loop over the given store.
func NewPersister(store *Store, dir string, interval time.Duration) *Persister {
	return &Persister{store: store, dir: dir, interval: interval}
}

// Run ticks until the context is cancelled, then makes one final pass so
// nothing dirty is lost on shutdown.
func (p *Persister) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return nil
		case <-ticker.C:
			p.Flush()
		}
	}
}

// Flush persists every dirty session once. Errors are logged and the
// session stays dirty for the next pass.
func (p *Persister) Flush() {
	for _, sess := range p.store.Sessions() {
		if !sess.Dirty() {
			continue
		}
		if err := sess.Persist(p.dir); err != nil {
			metrics.SnapshotErrors.Inc()
			log.Printf("persist: session %s: %v", sess.ID, err)
			continue
		}
		metrics.SnapshotWrites.Inc()
	}
}
