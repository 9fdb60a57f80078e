// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"os"
)

// CheckTLSConfig validates the TLS flag pair and reports whether TLS should
// be enabled. Specifying only one of the two paths is an error.
func CheckTLSConfig(certPath, keyPath string) (bool, error) {
	if certPath == "" && keyPath == "" {
		return false, nil
	}

	if certPath == "" || keyPath == "" {
		return false, fmt.Errorf("both cert and key must be specified (got cert=%q, key=%q)", certPath, keyPath)
	}

	certPath = ExpandPath(certPath)
	keyPath = ExpandPath(keyPath)

	if !fileExists(certPath) {
		return false, fmt.Errorf("cert file not found: %s", certPath)
	}
	if !fileExists(keyPath) {
		return false, fmt.Errorf("key file not found: %s", keyPath)
	}

	return true, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
