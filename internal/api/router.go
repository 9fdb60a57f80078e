// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api wires the HTTP surface of the whiteboard server.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wingedpig/whiteboard/internal/api/handlers"
	"github.com/wingedpig/whiteboard/internal/api/middleware"
	"github.com/wingedpig/whiteboard/internal/board"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Store     *board.Store
	PublicDir string
}

// NewRouter creates the server's router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	pageHandler := handlers.NewPageHandler(deps.PublicDir)
	boardHandler := handlers.NewBoardHandler(deps.Store)

	r.HandleFunc("/", pageHandler.NewSession).Methods("GET")
	r.HandleFunc("/s/{id}", pageHandler.Board).Methods("GET")
	r.HandleFunc("/ws/{id}", boardHandler.WebSocket).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Everything else falls through to static assets.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(deps.PublicDir)))

	return r
}
