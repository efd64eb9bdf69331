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

package keystore

import (
	"crypto/elliptic"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

func TestKeygenCreatesPair(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	assert.True(t, generated)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	prvInfo, err := os.Stat(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), prvInfo.Mode().Perm())

	pubInfo, err := os.Stat(filepath.Join(dir, PublicKeyFilename))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), pubInfo.Mode().Perm())

	key, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.Equal(t, elliptic.P256(), key.Curve)

	pub, ok := store.LoadPublicKey()
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(pub))
}

func TestKeygenRefusesExistingPair(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	require.True(t, generated)

	before, err := os.ReadFile(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)

	generated, err = store.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)

	// The refusal leaves the existing files byte-identical
	after, err := os.ReadFile(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestKeygenRefusesPartialPair(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PrivateKeyFilename), []byte("existing"), 0600))

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestKeygenForceReplaces(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	require.True(t, generated)

	before, err := os.ReadFile(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)

	generated, err = store.Keygen(true)
	require.NoError(t, err)
	assert.True(t, generated)

	after, err := os.ReadFile(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	// The replacement pair is internally consistent
	key, ok := store.LoadPrivateKey()
	require.True(t, ok)
	pub, ok := store.LoadPublicKey()
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(pub))
}

func TestKeygenRefusedInMemoryMode(t *testing.T) {
	store := newStore(t, &Config{Directory: t.TempDir(), Mode: storage.ModeMemory})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)

	generated, err = store.Keygen(true)
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestKeygenRefusedWithoutDirectory(t *testing.T) {
	store := newStore(t, &Config{Mode: storage.ModeAuto})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestKeygenNamedContext(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, &Config{Directory: dir, Name: "alice", Mode: storage.ModeFlush})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	require.True(t, generated)

	assert.FileExists(t, filepath.Join(dir, "alice-"+PrivateKeyFilename))
	assert.FileExists(t, filepath.Join(dir, "alice-"+PublicKeyFilename))
}

func TestKeygenPasswordProtected(t *testing.T) {
	dir := t.TempDir()
	password := []byte("pass phrase")
	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto, Password: password})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	require.True(t, generated)

	pemData, err := os.ReadFile(filepath.Join(dir, PrivateKeyFilename))
	require.NoError(t, err)
	assert.Contains(t, string(pemData), "ENCRYPTED PRIVATE KEY")

	key, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.NotNil(t, key)
}

// failingBackend wraps a backend and fails writes for one key, to
// exercise the pair rollback.
type failingBackend struct {
	storage.Backend
	failKey string
}

func (f *failingBackend) Put(key string, value []byte, opts *storage.Options) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Backend.Put(key, value, opts)
}

func TestKeygenRollsBackPartialPair(t *testing.T) {
	backend := &failingBackend{
		Backend: storage.NewMemory(),
		failKey: PublicKeyFilename,
	}
	store := newStore(t, &Config{
		Directory: t.TempDir(),
		Mode:      storage.ModeAuto,
		Backend:   backend,
	})

	generated, err := store.Keygen(false)
	require.NoError(t, err)
	assert.False(t, generated)

	// The private key written before the failure must be gone
	exists, err := backend.Exists(PrivateKeyFilename)
	require.NoError(t, err)
	assert.False(t, exists)
}
