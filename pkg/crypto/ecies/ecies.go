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

// Package ecies provides Elliptic Curve Integrated Encryption Scheme
// (ECIES) hybrid encryption for EC keys.
//
// ECIES combines:
//  1. ECDH key agreement (ephemeral-static)
//  2. HKDF-SHA256 key derivation
//  3. AES-256-GCM authenticated encryption
//
// The output is a printable, self-describing envelope: a base64 string
// wrapping a JSON object whose fields are base64url (unpadded) encoded:
//
//	{
//	  "ephemeral_pubkey": <uncompressed EC point>,
//	  "iv":               <12-byte GCM nonce>,
//	  "tag":              <16-byte GCM tag>,
//	  "ciphertext":       <encrypted message>
//	}
//
// Because the envelope carries the ephemeral public key and nonce, Decrypt
// needs no out-of-band metadata. A fresh ephemeral key is generated on
// every call, so encrypting the same message twice never produces the same
// envelope.
//
// Example usage:
//
//	recipientPriv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
//
//	envelope, _ := ecies.Encrypt(rand.Reader, &recipientPriv.PublicKey, []byte("secret"))
//	plaintext, _ := ecies.Decrypt(recipientPriv, envelope)
package ecies

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/ecdh"
)

const (
	// Key size for AES-256
	aesKeySize = 32

	// GCM nonce size (96 bits is the GCM standard)
	nonceSize = 12

	// GCM tag size (128 bits)
	tagSize = 16

	// HKDF context label, fixed so independently built peers derive the
	// same symmetric key from the same shared secret
	hkdfInfo = "ecies-encryption"
)

// envelope is the JSON wire form of an encrypted message.
type envelope struct {
	EphemeralPubkey string `json:"ephemeral_pubkey"`
	IV              string `json:"iv"`
	Tag             string `json:"tag"`
	Ciphertext      string `json:"ciphertext"`
}

// Encrypt encrypts plaintext for the holder of the private key matching
// publicKey and returns the printable envelope.
//
// The process:
//  1. Generate an ephemeral EC key pair on the recipient's curve
//  2. ECDH: ephemeral private x recipient public
//  3. HKDF-SHA256 (nil salt, "ecies-encryption" info) -> AES-256 key
//  4. AES-256-GCM with a fresh 12-byte nonce
//  5. Serialize the envelope
func Encrypt(random io.Reader, publicKey *ecdsa.PublicKey, plaintext []byte) (string, error) {
	if random == nil {
		return "", fmt.Errorf("random source cannot be nil")
	}
	if publicKey == nil {
		return "", fmt.Errorf("public key cannot be nil")
	}
	if plaintext == nil {
		return "", fmt.Errorf("plaintext cannot be nil")
	}

	ephemeralPriv, err := ecdsa.GenerateKey(publicKey.Curve, random)
	if err != nil {
		return "", fmt.Errorf("failed to generate ephemeral key: %w", err)
	}

	sharedSecret, err := ecdh.DeriveSharedSecret(ephemeralPriv, publicKey)
	if err != nil {
		return "", fmt.Errorf("ECDH failed: %w", err)
	}

	encKey, err := ecdh.DeriveKey(sharedSecret, nil, []byte(hkdfInfo), aesKeySize)
	if err != nil {
		return "", fmt.Errorf("key derivation failed: %w", err)
	}

	gcm, err := newGCM(encKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the tag to the ciphertext; the envelope carries the
	// two separately
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	ephemeralPub, err := ephemeralPriv.PublicKey.ECDH()
	if err != nil {
		return "", fmt.Errorf("failed to serialize ephemeral public key: %w", err)
	}

	payload, err := json.Marshal(&envelope{
		EphemeralPubkey: base64.RawURLEncoding.EncodeToString(ephemeralPub.Bytes()),
		IV:              base64.RawURLEncoding.EncodeToString(nonce),
		Tag:             base64.RawURLEncoding.EncodeToString(tag),
		Ciphertext:      base64.RawURLEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize envelope: %w", err)
	}

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt opens an envelope produced by Encrypt using the recipient's
// private key.
//
// Returns ErrInvalidEnvelope if the content cannot be parsed and
// ErrDecryptionFailed if authentication fails (wrong key, tampered or
// truncated content). Both are routine outcomes for callers probing
// whether content was addressed to them.
func Decrypt(privateKey *ecdsa.PrivateKey, content string) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}

	payload, err := decodeBase64(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	ephemeralPubBytes, err := decodeField(env.EphemeralPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ephemeral key: %v", ErrInvalidEnvelope, err)
	}
	nonce, err := decodeField(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv: %v", ErrInvalidEnvelope, err)
	}
	tag, err := decodeField(env.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: bad tag: %v", ErrInvalidEnvelope, err)
	}
	ciphertext, err := decodeField(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext: %v", ErrInvalidEnvelope, err)
	}
	if len(nonce) != nonceSize || len(tag) != tagSize {
		return nil, fmt.Errorf("%w: bad nonce or tag length", ErrInvalidEnvelope)
	}

	ecdhCurve, err := privateKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}
	ephemeralECDH, err := ecdhCurve.Curve().NewPublicKey(ephemeralPubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable ephemeral key: %v", ErrInvalidEnvelope, err)
	}

	sharedSecret, err := ecdhCurve.ECDH(ephemeralECDH)
	if err != nil {
		return nil, fmt.Errorf("ECDH failed: %w", err)
	}

	encKey, err := ecdh.DeriveKey(sharedSecret, nil, []byte(hkdfInfo), aesKeySize)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}

	gcm, err := newGCM(encKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// newGCM builds an AES-GCM AEAD for the derived key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// decodeBase64 decodes the outer envelope encoding, tolerating missing
// padding.
func decodeBase64(content string) ([]byte, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(content), "=")
	return base64.RawStdEncoding.DecodeString(trimmed)
}

// decodeField decodes a base64url envelope field, tolerating padded input
// from peers that emit standard padding.
func decodeField(field string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(field, "="))
}
