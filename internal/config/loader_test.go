// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whiteboard.hjson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_HJSON(t *testing.T) {
	path := writeConfig(t, `{
  // Comments are allowed, this is HJSON.
  server: {
    host: 127.0.0.1
    port: 9000
    public_dir: ./web
    tls_cert: /etc/ssl/wb.crt
    tls_key: /etc/ssl/wb.key
  }
  storage: {
    sessions_dir: /var/lib/whiteboard
    backup_interval: 10
  }
}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "./web", cfg.Server.PublicDir)
	assert.Equal(t, "/etc/ssl/wb.crt", cfg.Server.TLSCert)
	assert.Equal(t, "/etc/ssl/wb.key", cfg.Server.TLSKey)
	assert.Equal(t, "/var/lib/whiteboard", cfg.Storage.SessionsDir)
	assert.Equal(t, 10, cfg.Storage.BackupInterval)
}

func TestLoadWithDefaults_FillsGaps(t *testing.T) {
	path := writeConfig(t, `{
  server: {
    port: 9000
  }
}`)

	cfg, err := NewLoader().LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, DefaultPublicDir, cfg.Server.PublicDir)
	assert.Equal(t, DefaultSessionsDir, cfg.Storage.SessionsDir)
	assert.Equal(t, DefaultBackupInterval, cfg.Storage.BackupInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.hjson"))
	assert.Error(t, err)
}

func TestLoad_BadSyntax(t *testing.T) {
	path := writeConfig(t, "{ server: { port: ")
	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultPublicDir, cfg.Server.PublicDir)
	assert.Equal(t, DefaultSessionsDir, cfg.Storage.SessionsDir)
	assert.Equal(t, DefaultBackupInterval, cfg.Storage.BackupInterval)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prevDir) })

	// Nothing present: no config, defaults apply.
	assert.Empty(t, NewLoader().FindConfig())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "whiteboard.hjson"), []byte("{}"), 0644))
	found := NewLoader().FindConfig()
	assert.Equal(t, "whiteboard.hjson", filepath.Base(found))
}
