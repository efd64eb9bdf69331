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

package ecdh

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return key
}

func TestDeriveSharedSecretSymmetry(t *testing.T) {
	alice := generateKey(t, elliptic.P256())
	bob := generateKey(t, elliptic.P256())

	secretA, err := DeriveSharedSecret(alice, &bob.PublicKey)
	require.NoError(t, err)
	secretB, err := DeriveSharedSecret(bob, &alice.PublicKey)
	require.NoError(t, err)

	assert.Equal(t, secretA, secretB)
	assert.Len(t, secretA, 32)
}

func TestDeriveSharedSecretCurveMismatch(t *testing.T) {
	p256 := generateKey(t, elliptic.P256())
	p384 := generateKey(t, elliptic.P384())

	_, err := DeriveSharedSecret(p256, &p384.PublicKey)
	assert.Error(t, err)
}

func TestDeriveSharedSecretNilKeys(t *testing.T) {
	key := generateKey(t, elliptic.P256())

	_, err := DeriveSharedSecret(nil, &key.PublicKey)
	assert.Error(t, err)

	_, err = DeriveSharedSecret(key, nil)
	assert.Error(t, err)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	secret := []byte("shared secret material")

	key1, err := DeriveKey(secret, nil, []byte("context"), 32)
	require.NoError(t, err)
	key2, err := DeriveKey(secret, nil, []byte("context"), 32)
	require.NoError(t, err)

	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)
}

func TestDeriveKeySeparation(t *testing.T) {
	secret := []byte("shared secret material")

	key1, err := DeriveKey(secret, nil, []byte("encryption"), 32)
	require.NoError(t, err)
	key2, err := DeriveKey(secret, nil, []byte("authentication"), 32)
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}

func TestDeriveKeyInvalidArgs(t *testing.T) {
	_, err := DeriveKey(nil, nil, nil, 32)
	assert.Error(t, err)

	_, err = DeriveKey([]byte("secret"), nil, nil, 0)
	assert.Error(t, err)
}

func TestParseUncompressedPointRoundTrip(t *testing.T) {
	key := generateKey(t, elliptic.P256())

	ecdhPub, err := key.PublicKey.ECDH()
	require.NoError(t, err)

	parsed, err := ParseUncompressedPoint(ecdhPub.Bytes())
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(parsed))
}

func TestParseUncompressedPointInvalid(t *testing.T) {
	_, err := ParseUncompressedPoint(nil)
	assert.Error(t, err)

	_, err = ParseUncompressedPoint([]byte{0x04, 0x01, 0x02})
	assert.Error(t, err)

	// Compressed points are not accepted
	badPoint := make([]byte, 33)
	badPoint[0] = 0x02
	_, err = ParseUncompressedPoint(badPoint)
	assert.Error(t, err)
}
