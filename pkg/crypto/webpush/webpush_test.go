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

package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/ecdh"
)

func generateSubscription(t *testing.T) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	return key, authSecret
}

// decryptBody reverses the aes128gcm encoding with the subscriber's
// private key, exercising the full RFC 8291 key schedule from the
// receiving side.
func decryptBody(t *testing.T, body []byte, uaPriv *ecdsa.PrivateKey, authSecret []byte) []byte {
	t.Helper()

	require.Greater(t, len(body), 21+65)
	salt := body[:16]
	recordSize := binary.BigEndian.Uint32(body[16:20])
	require.Equal(t, uint32(RecordSize), recordSize)

	keyIDLen := int(body[20])
	require.Equal(t, 65, keyIDLen)
	asPublicBytes := body[21 : 21+keyIDLen]
	sealed := body[21+keyIDLen:]

	asPublic, err := ecdh.ParseUncompressedPoint(asPublicBytes)
	require.NoError(t, err)

	sharedSecret, err := ecdh.DeriveSharedSecret(uaPriv, asPublic)
	require.NoError(t, err)

	uaPublic, err := uaPriv.PublicKey.ECDH()
	require.NoError(t, err)

	info := append([]byte("WebPush: info\x00"), uaPublic.Bytes()...)
	info = append(info, asPublicBytes...)

	ikm, err := ecdh.DeriveKey(sharedSecret, authSecret, info, 32)
	require.NoError(t, err)
	cek, err := ecdh.DeriveKey(ikm, salt, []byte("Content-Encoding: aes128gcm\x00"), 16)
	require.NoError(t, err)
	nonce, err := ecdh.DeriveKey(ikm, salt, []byte("Content-Encoding: nonce\x00"), 12)
	require.NoError(t, err)

	block, err := aes.NewCipher(cek)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	record, err := gcm.Open(nil, nonce, sealed, nil)
	require.NoError(t, err)

	// Strip the last-record padding delimiter
	require.NotEmpty(t, record)
	require.Equal(t, byte(0x02), record[len(record)-1])
	return record[:len(record)-1]
}

func TestEncryptRoundTrip(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)
	message := []byte("push notification payload")

	body, err := Encrypt(rand.Reader, message, &uaPriv.PublicKey, authSecret)
	require.NoError(t, err)

	decrypted := decryptBody(t, body, uaPriv, authSecret)
	assert.Equal(t, message, decrypted)
}

func TestEncryptEmptyMessage(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)

	body, err := Encrypt(rand.Reader, []byte{}, &uaPriv.PublicKey, authSecret)
	require.NoError(t, err)

	decrypted := decryptBody(t, body, uaPriv, authSecret)
	assert.Empty(t, decrypted)
}

func TestEncryptHeaderFraming(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)
	message := []byte("hello")

	body, err := Encrypt(rand.Reader, message, &uaPriv.PublicKey, authSecret)
	require.NoError(t, err)

	// salt(16) || rs(4) || idlen(1) || keyid(65) || message+delimiter+tag
	expectedLen := 16 + 4 + 1 + 65 + len(message) + 1 + 16
	assert.Len(t, body, expectedLen)
	assert.Equal(t, uint32(4096), binary.BigEndian.Uint32(body[16:20]))
	assert.Equal(t, byte(65), body[20])
	assert.Equal(t, byte(0x04), body[21])
}

func TestEncryptNondeterministic(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)
	message := []byte("same message")

	body1, err := Encrypt(rand.Reader, message, &uaPriv.PublicKey, authSecret)
	require.NoError(t, err)
	body2, err := Encrypt(rand.Reader, message, &uaPriv.PublicKey, authSecret)
	require.NoError(t, err)

	assert.NotEqual(t, body1, body2)
}

func TestEncryptRejectsWrongCurve(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	_, err = Encrypt(rand.Reader, []byte("x"), &key.PublicKey, []byte("0123456789abcdef"))
	assert.ErrorIs(t, err, ErrInvalidCurve)
}

func TestEncryptRejectsEmptyAuthSecret(t *testing.T) {
	uaPriv, _ := generateSubscription(t)

	_, err := Encrypt(rand.Reader, []byte("x"), &uaPriv.PublicKey, nil)
	assert.ErrorIs(t, err, ErrInvalidAuthSecret)
}

func TestEncryptRejectsOversizedMessage(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)

	// Delimiter and tag must fit in the single record
	tooLong := make([]byte, RecordSize-16)
	_, err := Encrypt(rand.Reader, tooLong, &uaPriv.PublicKey, authSecret)
	assert.ErrorIs(t, err, ErrMessageTooLong)

	fits := make([]byte, RecordSize-17)
	_, err = Encrypt(rand.Reader, fits, &uaPriv.PublicKey, authSecret)
	assert.NoError(t, err)
}

func TestEncryptInvalidArgs(t *testing.T) {
	uaPriv, authSecret := generateSubscription(t)

	_, err := Encrypt(nil, []byte("x"), &uaPriv.PublicKey, authSecret)
	assert.Error(t, err)

	_, err = Encrypt(rand.Reader, []byte("x"), nil, authSecret)
	assert.Error(t, err)
}
