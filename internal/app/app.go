// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the whiteboard server together and runs it.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wingedpig/whiteboard/internal/api"
	"github.com/wingedpig/whiteboard/internal/board"
	"github.com/wingedpig/whiteboard/internal/config"
	"github.com/wingedpig/whiteboard/internal/watcher"
)

// Options holds command-line overrides for the app.
type Options struct {
	ConfigPath     string
	Host           string
	Port           int
	SessionsDir    string
	PublicDir      string
	BackupInterval int // seconds
	TLSCert        string
	TLSKey         string
	Version        string
}

// App is the main application container.
type App struct {
	config    *config.Config
	store     *board.Store
	persister *board.Persister
	version   string
}

// New creates a new App instance.
func New(opts Options) (*App, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.NewLoader().LoadWithDefaults(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	// Command-line flags override the config file.
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.PublicDir != "" {
		cfg.Server.PublicDir = opts.PublicDir
	}
	if opts.TLSCert != "" {
		cfg.Server.TLSCert = opts.TLSCert
	}
	if opts.TLSKey != "" {
		cfg.Server.TLSKey = opts.TLSKey
	}
	if opts.SessionsDir != "" {
		cfg.Storage.SessionsDir = opts.SessionsDir
	}
	if opts.BackupInterval > 0 {
		cfg.Storage.BackupInterval = opts.BackupInterval
	}

	if err := os.MkdirAll(cfg.Storage.SessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}

	store := board.NewStore(cfg.Storage.SessionsDir)
	interval := time.Duration(cfg.Storage.BackupInterval) * time.Second

	return &App{
		config:    cfg,
		store:     store,
		persister: board.NewPersister(store, cfg.Storage.SessionsDir, interval),
		version:   opts.Version,
	}, nil
}

// Run serves until the context is cancelled or a signal arrives. Shutdown
// drains the HTTP server and makes a final persistence pass.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.config
	router := api.NewRouter(api.Dependencies{
		Store:     app.store,
		PublicDir: cfg.Server.PublicDir,
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	tlsEnabled, err := api.CheckTLSConfig(cfg.Server.TLSCert, cfg.Server.TLSKey)
	if err != nil {
		return err
	}
	if tlsEnabled {
		cw, err := watcher.NewCertWatcher(api.ExpandPath(cfg.Server.TLSCert), api.ExpandPath(cfg.Server.TLSKey))
		if err != nil {
			return fmt.Errorf("watch TLS keypair: %w", err)
		}
		defer cw.Close()
		server.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: cw.GetCertificate,
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.persister.Run(ctx)
	})

	g.Go(func() error {
		scheme := "http"
		if tlsEnabled {
			scheme = "https"
		}
		log.Printf("whiteboard %s listening on %s://%s", app.version, scheme, addr)

		var err error
		if tlsEnabled {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
