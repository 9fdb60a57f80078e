// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers contains the HTTP and WebSocket handlers of the
// whiteboard server.
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// canonicalSessionID validates a session id from the URL and returns its
// canonical form. Ids are UUID strings; anything else is rejected, which
// also keeps snapshot filenames free of path elements.
func canonicalSessionID(raw string) (string, error) {
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", raw, err)
	}
	return u.String(), nil
}

// PageHandler serves the single-page client.
type PageHandler struct {
	publicDir string
}

// NewPageHandler creates a page handler serving assets from publicDir.
func NewPageHandler(publicDir string) *PageHandler {
	return &PageHandler{publicDir: publicDir}
}

// NewSession generates a fresh session id and redirects to its board page.
func (h *PageHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/s/"+uuid.NewString(), http.StatusFound)
}

// Board serves the client page for an existing session.
func (h *PageHandler) Board(w http.ResponseWriter, r *http.Request) {
	if _, err := canonicalSessionID(mux.Vars(r)["id"]); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.publicDir, "index.html"))
}
