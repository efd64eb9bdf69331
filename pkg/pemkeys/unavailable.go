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

package pemkeys

import (
	"crypto/ecdsa"

	"github.com/jeremyhahn/go-pemkeys/pkg/keystore"
)

// unavailableBackend satisfies CryptoBackend when the crypto capability
// cannot be provided. Every method fails with ErrUnavailable so callers
// see one uniform, matchable error regardless of which operation they
// attempted.
type unavailableBackend struct{}

// Unavailable returns the CryptoBackend used when cryptographic support
// is absent.
func Unavailable() CryptoBackend {
	return unavailableBackend{}
}

func (unavailableBackend) Keygen(force bool) (bool, error) {
	return false, ErrUnavailable
}

func (unavailableBackend) PublicKey() (*ecdsa.PublicKey, error) {
	return nil, ErrUnavailable
}

func (unavailableBackend) PrivateKey() (*ecdsa.PrivateKey, error) {
	return nil, ErrUnavailable
}

func (unavailableBackend) PublicKeyfile() (string, keystore.FileState, error) {
	return "", keystore.FileAbsent, ErrUnavailable
}

func (unavailableBackend) PrivateKeyfile() (string, keystore.FileState, error) {
	return "", keystore.FileAbsent, ErrUnavailable
}

func (unavailableBackend) X962() (string, error) {
	return "", ErrUnavailable
}

func (unavailableBackend) Encrypt(message []byte, publicKey *ecdsa.PublicKey) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (unavailableBackend) Decrypt(content []byte, privateKey *ecdsa.PrivateKey) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (unavailableBackend) EncryptWebPush(message []byte, publicKey *ecdsa.PublicKey, authSecret []byte) ([]byte, error) {
	return nil, ErrUnavailable
}

func (unavailableBackend) Sign(data []byte) ([]byte, error) {
	return nil, ErrUnavailable
}

var _ CryptoBackend = unavailableBackend{}
