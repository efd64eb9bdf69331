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

	"github.com/jeremyhahn/go-pemkeys/pkg/logging"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

// Config binds a Controller to a key context. The identity of a context
// is its (Name, Directory) pair; several named contexts may share one
// directory.
type Config struct {
	// Directory where the PEM key pair is stored.
	Directory string

	// Name of the context. Empty selects the default context
	// (public_key.pem / private_key.pem); otherwise files are prefixed
	// with "{name}-".
	Name string

	// Mode is the storage policy. storage.ModeMemory forbids all
	// persistence, so key generation always refuses.
	Mode storage.Mode

	// Autogen permits generating a missing key pair on demand during
	// key resolution. Explicit Keygen calls are always allowed (subject
	// to Mode).
	Autogen bool

	// PublicKeyfile / PrivateKeyfile optionally pin explicit key file
	// paths, bypassing directory resolution. An override that does not
	// resolve marks the context misconfigured; no generation fallback
	// occurs.
	PublicKeyfile  string
	PrivateKeyfile string

	// Password optionally encrypts the private key PEM at rest.
	Password []byte

	// Backend overrides the crypto capability. Leave nil for the real
	// implementation; use Unavailable() to model an environment without
	// crypto support.
	Backend CryptoBackend

	// Storage overrides the persistence backend, mainly for tests.
	Storage storage.Backend

	// Logger defaults to logging.DefaultLogger().
	Logger *logging.Logger
}

// DefaultConfig returns a Config for the default context in the given
// directory, with persistence and on-demand generation enabled.
func DefaultConfig(directory string) *Config {
	return &Config{
		Directory: directory,
		Mode:      storage.ModeAuto,
		Autogen:   true,
	}
}

// EncryptOptions carries optional parameters for Encrypt.
type EncryptOptions struct {
	// PublicKey encrypts for this recipient instead of the controller's
	// own public key.
	PublicKey *ecdsa.PublicKey
}

// DecryptOptions carries optional parameters for Decrypt.
type DecryptOptions struct {
	// PrivateKey decrypts with this key instead of the controller's own
	// private key.
	PrivateKey *ecdsa.PrivateKey
}
