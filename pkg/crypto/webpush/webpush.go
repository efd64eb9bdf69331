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

// Package webpush implements Web Push message encryption as specified by
// RFC 8291 (Message Encryption for Web Push) and RFC 8188 (Encrypted
// Content-Encoding for HTTP, aes128gcm).
//
// The recipient keys come from a browser push subscription: a P-256
// public key (the "p256dh" value) and a 16-byte authentication secret
// (the "auth" value). The output is the raw aes128gcm body:
//
//	salt (16) || record size (4, big-endian) || key id length (1) ||
//	ephemeral public key (65) || AEAD record
//
// ready for direct transmission to the push service with
// "Content-Encoding: aes128gcm".
package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/ecdh"
)

const (
	// RecordSize is the rs value written into the aes128gcm header.
	// A push message must fit in a single record.
	RecordSize = 4096

	// Salt length per RFC 8188
	saltSize = 16

	// AES-128 content encryption key
	cekSize = 16

	// GCM nonce
	nonceSize = 12

	// GCM authentication tag
	tagSize = 16

	// RFC 8291 2-byte-free padding delimiter for the last record
	recordDelimiter = 0x02
)

// HKDF context labels per RFC 8291 §3.3/§3.4 and RFC 8188 §2.2/§2.3.
var (
	infoWebPush = []byte("WebPush: info\x00")
	infoCEK     = []byte("Content-Encoding: aes128gcm\x00")
	infoNonce   = []byte("Content-Encoding: nonce\x00")
)

// Encrypt encrypts message for a push subscription identified by the
// recipient's P-256 public key and auth secret, returning the aes128gcm
// body.
//
// Key schedule (RFC 8291):
//
//	ecdh_secret = ECDH(ephemeral, ua_public)
//	ikm   = HKDF(salt=auth_secret, ecdh_secret, "WebPush: info"||0x00||ua_public||as_public, 32)
//	cek   = HKDF(salt, ikm, "Content-Encoding: aes128gcm"||0x00, 16)
//	nonce = HKDF(salt, ikm, "Content-Encoding: nonce"||0x00, 12)
func Encrypt(random io.Reader, message []byte, publicKey *ecdsa.PublicKey, authSecret []byte) ([]byte, error) {
	if random == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	if publicKey.Curve == nil || publicKey.Curve.Params().Name != "P-256" {
		return nil, ErrInvalidCurve
	}
	if len(authSecret) == 0 {
		return nil, ErrInvalidAuthSecret
	}
	// The delimiter and tag share the record with the message
	if len(message)+1+tagSize > RecordSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(message))
	}

	// Ephemeral sender key (the "as" key in RFC 8291 terms)
	ephemeralPriv, err := ecdsa.GenerateKey(publicKey.Curve, random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(random, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	sharedSecret, err := ecdh.DeriveSharedSecret(ephemeralPriv, publicKey)
	if err != nil {
		return nil, fmt.Errorf("ECDH failed: %w", err)
	}

	uaPublic, err := publicKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize recipient key: %w", err)
	}
	asPublic, err := ephemeralPriv.PublicKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ephemeral key: %w", err)
	}
	uaPublicBytes := uaPublic.Bytes()
	asPublicBytes := asPublic.Bytes()

	// ikm binds the secret to both parties' public keys
	info := make([]byte, 0, len(infoWebPush)+len(uaPublicBytes)+len(asPublicBytes))
	info = append(info, infoWebPush...)
	info = append(info, uaPublicBytes...)
	info = append(info, asPublicBytes...)

	ikm, err := ecdh.DeriveKey(sharedSecret, authSecret, info, 32)
	if err != nil {
		return nil, fmt.Errorf("ikm derivation failed: %w", err)
	}

	cek, err := ecdh.DeriveKey(ikm, salt, infoCEK, cekSize)
	if err != nil {
		return nil, fmt.Errorf("cek derivation failed: %w", err)
	}

	nonce, err := ecdh.DeriveKey(ikm, salt, infoNonce, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("nonce derivation failed: %w", err)
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	// The single (and therefore last) record carries the 0x02 delimiter
	record := make([]byte, 0, len(message)+1)
	record = append(record, message...)
	record = append(record, recordDelimiter)
	sealed := gcm.Seal(nil, nonce, record, nil)

	// aes128gcm header framing (RFC 8188 §2.1)
	body := make([]byte, 0, saltSize+4+1+len(asPublicBytes)+len(sealed))
	body = append(body, salt...)
	body = binary.BigEndian.AppendUint32(body, RecordSize)
	body = append(body, byte(len(asPublicBytes)))
	body = append(body, asPublicBytes...)
	body = append(body, sealed...)

	return body, nil
}
