// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher reloads the TLS keypair when the files on disk change,
// so certificate renewals take effect without a restart.
package watcher

import (
	"crypto/tls"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of filesystem events a renewal produces
// (cert and key are typically replaced within moments of each other).
const reloadDelay = 500 * time.Millisecond

// CertWatcher serves a TLS certificate and swaps it when the underlying
// files change. Renewal tools replace files via rename, so the parent
// directories are watched rather than the files themselves.
type CertWatcher struct {
	mu       sync.RWMutex
	certPath string
	keyPath  string
	cert     *tls.Certificate

	fw      *fsnotify.Watcher
	timer   *time.Timer
	timerMu sync.Mutex
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewCertWatcher loads the keypair and starts watching it for changes.
func NewCertWatcher(certPath, keyPath string) (*CertWatcher, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &CertWatcher{
		certPath: certPath,
		keyPath:  keyPath,
		cert:     &cert,
		fw:       fw,
		closeCh:  make(chan struct{}),
	}

	dirs := map[string]struct{}{
		filepath.Dir(certPath): {},
		filepath.Dir(keyPath):  {},
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (w *CertWatcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cert, nil
}

// Close stops the watcher.
func (w *CertWatcher) Close() error {
	close(w.closeCh)
	err := w.fw.Close()
	w.wg.Wait()
	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()
	return err
}

func (w *CertWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("cert watcher: %v", err)
		}
	}
}

func (w *CertWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == filepath.Clean(w.certPath) || name == filepath.Clean(w.keyPath)
}

func (w *CertWatcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDelay, w.reload)
}

func (w *CertWatcher) reload() {
	cert, err := tls.LoadX509KeyPair(w.certPath, w.keyPath)
	if err != nil {
		// Keep serving the previous keypair; a renewal may still be
		// mid-replace and another event will retry.
		log.Printf("cert watcher: reload failed, keeping previous keypair: %v", err)
		return
	}

	w.mu.Lock()
	w.cert = &cert
	w.mu.Unlock()
	log.Printf("cert watcher: reloaded keypair from %s", w.certPath)
}
