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

// Package encoding converts EC keys to and from their PEM representations.
//
// Private keys are serialized as PKCS#8 (optionally password-encrypted via
// the PKCS#5 v2 schemes provided by github.com/youmark/pkcs8), public keys
// as PKIX SubjectPublicKeyInfo. On decode a few legacy block types are
// accepted so key files produced by other toolchains still load.
package encoding

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/youmark/pkcs8"
)

// PEM block types
const (
	PEMTypeECPrivateKey        = "EC PRIVATE KEY"
	PEMTypePrivateKey          = "PRIVATE KEY"
	PEMTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PEMTypePublicKey           = "PUBLIC KEY"
)

// EncodePrivateKeyPEM encodes an EC private key to PEM format.
// If a password is provided the key is encrypted using PKCS#8 encryption
// and emitted as an "ENCRYPTED PRIVATE KEY" block; otherwise it is an
// unencrypted PKCS#8 "PRIVATE KEY" block.
func EncodePrivateKeyPEM(privateKey *ecdsa.PrivateKey, password []byte) ([]byte, error) {
	if privateKey == nil {
		return nil, ErrInvalidPrivateKey
	}

	var der []byte
	var err error
	blockType := PEMTypePrivateKey

	if len(password) > 0 {
		der, err = pkcs8.MarshalPrivateKey(privateKey, password, nil)
		blockType = PEMTypeEncryptedPrivateKey
	} else {
		der, err = x509.MarshalPKCS8PrivateKey(privateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodePrivateKeyPEM decodes PEM encoded data to an EC private key.
// If the PEM data is encrypted, a password must be provided.
//
// Accepted block types: "PRIVATE KEY" (PKCS#8), "ENCRYPTED PRIVATE KEY"
// and the legacy "EC PRIVATE KEY" (SEC 1).
func DecodePrivateKeyPEM(data []byte, password []byte) (*ecdsa.PrivateKey, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}

	switch block.Type {
	case PEMTypeECPrivateKey:
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
		return key, nil

	case PEMTypeEncryptedPrivateKey:
		if len(password) == 0 {
			return nil, ErrInvalidPassword
		}
		key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an EC key", ErrInvalidPrivateKey, key)
		}
		return ecKey, nil

	default:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an EC key", ErrInvalidPrivateKey, key)
		}
		return ecKey, nil
	}
}

// EncodePublicKeyPEM encodes an EC public key to a PKIX "PUBLIC KEY" PEM block.
func EncodePublicKeyPEM(publicKey *ecdsa.PublicKey) ([]byte, error) {
	if publicKey == nil {
		return nil, ErrInvalidPublicKey
	}

	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal PKIX public key: %w", err)
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: PEMTypePublicKey, Bytes: der}); err != nil {
		return nil, fmt.Errorf("failed to encode PEM: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodePublicKeyPEM decodes PEM encoded data to an EC public key.
func DecodePublicKeyPEM(data []byte) (*ecdsa.PublicKey, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPEMEncoding
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKIX public key: %w", err)
	}

	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an EC key", ErrInvalidPublicKey, pub)
	}

	return ecPub, nil
}
