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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pemkeys/pkg/encoding"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

func newStore(t *testing.T, cfg *Config) *Store {
	t.Helper()
	store, err := New(cfg)
	require.NoError(t, err)
	return store
}

func writePair(t *testing.T, dir, prefix string) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	privatePEM, err := encoding.EncodePrivateKeyPEM(key, nil)
	require.NoError(t, err)
	publicPEM, err := encoding.EncodePublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, prefix+PrivateKeyFilename), privatePEM, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, prefix+PublicKeyFilename), publicPEM, 0644))
	return key
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolveAbsent(t *testing.T) {
	store := newStore(t, &Config{Directory: t.TempDir(), Mode: storage.ModeAuto})

	_, state := store.PublicKeyfile()
	assert.Equal(t, FileAbsent, state)
	_, state = store.PrivateKeyfile()
	assert.Equal(t, FileAbsent, state)
}

func TestResolveFound(t *testing.T) {
	dir := t.TempDir()
	writePair(t, dir, "")

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	path, state := store.PublicKeyfile()
	assert.Equal(t, FileFound, state)
	assert.Equal(t, filepath.Join(dir, PublicKeyFilename), path)

	path, state = store.PrivateKeyfile()
	assert.Equal(t, FileFound, state)
	assert.Equal(t, filepath.Join(dir, PrivateKeyFilename), path)
}

func TestResolveNamedContext(t *testing.T) {
	dir := t.TempDir()
	writePair(t, dir, "alice-")

	store := newStore(t, &Config{Directory: dir, Name: "alice", Mode: storage.ModeAuto})

	path, state := store.PrivateKeyfile()
	assert.Equal(t, FileFound, state)
	assert.Equal(t, filepath.Join(dir, "alice-"+PrivateKeyFilename), path)
}

func TestNameNormalization(t *testing.T) {
	store := newStore(t, &Config{Directory: t.TempDir(), Name: " Alice! ", Mode: storage.ModeAuto})
	assert.Equal(t, "alice", store.Name())
}

func TestResolveAlternateFilenames(t *testing.T) {
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	publicPEM, err := encoding.EncodePublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)
	privatePEM, err := encoding.EncodePrivateKeyPEM(key, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pub.pem"), publicPEM, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prv.pem"), privatePEM, 0600))

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	path, state := store.PublicKeyfile()
	assert.Equal(t, FileFound, state)
	assert.Equal(t, filepath.Join(dir, "pub.pem"), path)

	loaded, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.True(t, key.Equal(loaded))
}

func TestAlternateFilenamesIgnoredForNamedContext(t *testing.T) {
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	publicPEM, err := encoding.EncodePublicKeyPEM(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pub.pem"), publicPEM, 0644))

	store := newStore(t, &Config{Directory: dir, Name: "alice", Mode: storage.ModeAuto})

	_, state := store.PublicKeyfile()
	assert.Equal(t, FileAbsent, state)
}

func TestResolveExplicitOverride(t *testing.T) {
	dir := t.TempDir()
	key := writePair(t, dir, "")

	override := filepath.Join(dir, PrivateKeyFilename)
	store := newStore(t, &Config{
		Mode:           storage.ModeMemory,
		PrivateKeyfile: override,
	})

	path, state := store.PrivateKeyfile()
	assert.Equal(t, FileFound, state)
	assert.Equal(t, override, path)

	loaded, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.True(t, key.Equal(loaded))
}

func TestResolveBrokenOverride(t *testing.T) {
	store := newStore(t, &Config{
		Directory:      t.TempDir(),
		Mode:           storage.ModeAuto,
		PrivateKeyfile: "/nonexistent/path/key.pem",
	})

	_, state := store.PrivateKeyfile()
	assert.Equal(t, FileBroken, state)

	_, ok := store.LoadPrivateKey()
	assert.False(t, ok)
}

func TestMemoryModeNeverResolves(t *testing.T) {
	dir := t.TempDir()
	writePair(t, dir, "")

	// Memory mode ignores the directory entirely
	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeMemory})

	_, state := store.PublicKeyfile()
	assert.Equal(t, FileAbsent, state)

	_, ok := store.LoadPrivateKey()
	assert.False(t, ok)
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key := writePair(t, dir, "")

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	loadedPrv, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.True(t, key.Equal(loadedPrv))

	loadedPub, ok := store.LoadPublicKey()
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(loadedPub))
}

func TestLoadCorruptPEM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PrivateKeyFilename), []byte("not a key"), 0600))

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	_, ok := store.LoadPrivateKey()
	assert.False(t, ok)
}

func TestLoadOversizedFileRefused(t *testing.T) {
	dir := t.TempDir()
	big := bytes.Repeat([]byte("A"), maxPEMFileSize+1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, PublicKeyFilename), big, 0644))

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})

	_, ok := store.LoadPublicKey()
	assert.False(t, ok)
}

func TestLoadEncryptedPrivateKey(t *testing.T) {
	dir := t.TempDir()
	password := []byte("hunter2hunter2")

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	privatePEM, err := encoding.EncodePrivateKeyPEM(key, password)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, PrivateKeyFilename), privatePEM, 0600))

	store := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto, Password: password})
	loaded, ok := store.LoadPrivateKey()
	require.True(t, ok)
	assert.True(t, key.Equal(loaded))

	// Without the password the key is a routine miss, not an error
	storeNoPass := newStore(t, &Config{Directory: dir, Mode: storage.ModeAuto})
	_, ok = storeNoPass.LoadPrivateKey()
	assert.False(t, ok)
}
