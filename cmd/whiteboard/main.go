// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wingedpig/whiteboard/internal/app"
	"github.com/wingedpig/whiteboard/internal/config"
)

var (
	version = "0.9"
)

func main() {
	var (
		configPath  string
		host        string
		port        int
		sessionsDir string
		publicDir   string
		backup      int
		tlsCert     string
		tlsKey      string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "HTTP server host (overrides config)")
	flag.IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	flag.StringVar(&sessionsDir, "sessions", "", "Directory for session snapshots (overrides config)")
	flag.StringVar(&publicDir, "public", "", "Directory with the client page and assets (overrides config)")
	flag.IntVar(&backup, "backup", 0, "Seconds between persistence passes (overrides config)")
	flag.StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file (overrides config)")
	flag.StringVar(&tlsKey, "tls-key", "", "Path to TLS private key file (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("whiteboard %s\n", version)
		os.Exit(0)
	}

	// PORT applies only when no -port flag was given.
	if port == 0 {
		if env := os.Getenv("PORT"); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				log.Fatalf("Invalid PORT value %q: %v", env, err)
			}
			port = p
		}
	}

	// Find config file if not specified
	if configPath == "" {
		configPath = config.NewLoader().FindConfig()
	}
	if configPath != "" {
		log.Printf("Using config: %s", configPath)
	}

	application, err := app.New(app.Options{
		ConfigPath:     configPath,
		Host:           host,
		Port:           port,
		SessionsDir:    sessionsDir,
		PublicDir:      publicDir,
		BackupInterval: backup,
		TLSCert:        tlsCert,
		TLSKey:         tlsKey,
		Version:        version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("App error: %v", err)
	}
}
