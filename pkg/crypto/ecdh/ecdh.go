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

// Package ecdh provides Elliptic Curve Diffie-Hellman key agreement over
// the NIST curves, plus HKDF-SHA256 key derivation from the resulting
// shared secrets.
//
// Example usage:
//
//	alicePriv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
//	bobPriv, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
//
//	// Both sides derive the same secret
//	secret, _ := ecdh.DeriveSharedSecret(alicePriv, &bobPriv.PublicKey)
//
//	// Turn it into an encryption key
//	encKey, _ := ecdh.DeriveKey(secret, nil, []byte("encryption"), 32)
package ecdh

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// DeriveSharedSecret performs ECDH key agreement between a private key and
// a public key, returning the raw shared secret.
//
// Both keys must use the same curve (P-256, P-384 or P-521). Use
// DeriveKey to turn the secret into usable key material.
func DeriveSharedSecret(privateKey *ecdsa.PrivateKey, publicKey *ecdsa.PublicKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}

	if privateKey.Curve != publicKey.Curve {
		return nil, fmt.Errorf("curve mismatch: private key uses %s, public key uses %s",
			privateKey.Curve.Params().Name, publicKey.Curve.Params().Name)
	}

	ecdhPriv, err := privateKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key: %w", err)
	}

	ecdhPub, err := publicKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("failed to convert public key: %w", err)
	}

	sharedSecret, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, fmt.Errorf("ECDH operation failed: %w", err)
	}

	return sharedSecret, nil
}

// DeriveKey derives keyLength bytes from a shared secret using HKDF-SHA256.
//
// The salt may be nil. The info parameter provides key separation:
// different info values produce independent keys from the same secret.
func DeriveKey(sharedSecret, salt, info []byte, keyLength int) ([]byte, error) {
	if sharedSecret == nil {
		return nil, fmt.Errorf("shared secret cannot be nil")
	}
	if keyLength <= 0 {
		return nil, fmt.Errorf("key length must be positive, got %d", keyLength)
	}

	derivedKey := make([]byte, keyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, salt, info), derivedKey); err != nil {
		return nil, fmt.Errorf("HKDF derivation failed: %w", err)
	}

	return derivedKey, nil
}

// ParseUncompressedPoint parses a 65-byte uncompressed P-256 point
// (0x04 || X || Y), the wire form browsers hand out for push
// subscription keys.
func ParseUncompressedPoint(data []byte) (*ecdsa.PublicKey, error) {
	key, err := ecdh.P256().NewPublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("invalid uncompressed point: %w", err)
	}

	// NewPublicKey validated the point; re-express it for the ecdsa API
	raw := key.Bytes()
	byteLen := (elliptic.P256().Params().BitSize + 7) / 8
	return &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(raw[1 : 1+byteLen]),
		Y:     new(big.Int).SetBytes(raw[1+byteLen:]),
	}, nil
}
