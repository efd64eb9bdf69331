// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pemkeys.
//
// go-pemkeys is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
}

func TestCreateControllerInvalidMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Mode = "broken"

	_, err := cfg.CreateController(false)
	assert.Error(t, err)
}

func TestCreateController(t *testing.T) {
	cfg := NewConfig()
	cfg.KeyDir = t.TempDir()

	controller, err := cfg.CreateController(true)
	require.NoError(t, err)
	require.NotNil(t, controller)

	// Fully functional context built from CLI settings
	envelope, ok, err := controller.Encrypt("cli payload", nil)
	require.NoError(t, err)
	require.True(t, ok)

	plaintext, ok, err := controller.Decrypt(envelope, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cli payload", plaintext)
}

func TestCreateControllerMemoryMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Mode = "memory"

	controller, err := cfg.CreateController(true)
	require.NoError(t, err)

	generated, err := controller.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)
}
