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

// Package pemkeys provides the PEM key pair controller: a façade over a
// file-backed elliptic-curve key context offering key lifecycle, hybrid
// encryption, web push encryption and raw signing.
//
// A Controller is bound at construction to one key context (directory,
// optional name, storage mode) and to one CryptoBackend. When the crypto
// capability is absent every operation fails uniformly with
// ErrUnavailable. Routine misses, such as asking for a key that does not
// exist yet in a mode that forbids generation, are reported through
// ok/nil results rather than errors.
package pemkeys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-pemkeys/pkg/keystore"
	"github.com/jeremyhahn/go-pemkeys/pkg/logging"
	"github.com/jeremyhahn/go-pemkeys/pkg/metrics"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

// Controller is the public entry point for one key context. Thread-safe.
type Controller struct {
	backend CryptoBackend
	mode    storage.Mode
	log     *logging.Logger
}

// New creates a Controller for the context described by cfg. The
// cfg.Backend hook substitutes the crypto capability, mainly to install
// Unavailable() or a test double; when nil the real backend is built
// from the remaining fields.
func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	mode := cfg.Mode
	if mode == "" {
		mode = storage.ModeAuto
	}
	if _, err := storage.ParseMode(string(mode)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	backend := cfg.Backend
	if backend == nil {
		cfgCopy := *cfg
		cfgCopy.Mode = mode
		cfgCopy.Logger = log
		real, err := newCryptoBackend(&cfgCopy)
		if err != nil {
			return nil, err
		}
		backend = real
	}

	return &Controller{
		backend: backend,
		mode:    mode,
		log:     log,
	}, nil
}

// Keygen generates and persists a fresh key pair. It reports false
// without error when generation is refused: non-persistent mode, no
// directory, or an existing pair without force. With force set, any
// existing pair is atomically replaced.
func (c *Controller) Keygen(force bool) (bool, error) {
	defer metrics.ObserveDuration("keygen", time.Now())

	ok, err := c.backend.Keygen(force)
	metrics.RecordOperation("keygen", status(ok, err))
	if ok {
		metrics.RecordKeygen()
	}
	return ok, err
}

// PublicKey returns the context's public key, resolving and caching it
// on first use. (nil, nil) means no key is available.
func (c *Controller) PublicKey() (*ecdsa.PublicKey, error) {
	key, err := c.backend.PublicKey()
	metrics.RecordOperation("public_key", status(key != nil, err))
	return key, err
}

// PrivateKey returns the context's private key, resolving and caching it
// on first use. (nil, nil) means no key is available.
func (c *Controller) PrivateKey() (*ecdsa.PrivateKey, error) {
	key, err := c.backend.PrivateKey()
	metrics.RecordOperation("private_key", status(key != nil, err))
	return key, err
}

// PublicKeyfile resolves the public key file path for this context.
func (c *Controller) PublicKeyfile() (string, keystore.FileState, error) {
	return c.backend.PublicKeyfile()
}

// PrivateKeyfile resolves the private key file path for this context.
func (c *Controller) PrivateKeyfile() (string, keystore.FileState, error) {
	return c.backend.PrivateKeyfile()
}

// X962 returns the base64url encoding of the public key's uncompressed
// point, the identifier shared with web push subscribers. Empty when no
// public key resolves.
func (c *Controller) X962() (string, error) {
	id, err := c.backend.X962()
	metrics.RecordOperation("x962", status(id != "", err))
	return id, err
}

// Encrypt seals message into a hybrid-encryption envelope for the
// recipient in opts, or for the context's own public key when opts is
// nil. message must be a string or []byte; anything else fails with
// ErrInvalidMessageType. ok=false without error means no usable key.
func (c *Controller) Encrypt(message any, opts *EncryptOptions) (string, bool, error) {
	defer metrics.ObserveDuration("encrypt", time.Now())

	plaintext, err := coerceMessage(message)
	if err != nil {
		metrics.RecordOperation("encrypt", metrics.StatusError)
		return "", false, err
	}

	var recipient *ecdsa.PublicKey
	if opts != nil {
		recipient = opts.PublicKey
	}

	envelope, ok, err := c.backend.Encrypt(plaintext, recipient)
	metrics.RecordOperation("encrypt", status(ok, err))
	return envelope, ok, err
}

// Decrypt opens a hybrid-encryption envelope with the key in opts, or
// with the context's own private key when opts is nil. ok=false without
// error covers every routine failure: no key, malformed envelope,
// failed authentication.
func (c *Controller) Decrypt(content any, opts *DecryptOptions) (string, bool, error) {
	defer metrics.ObserveDuration("decrypt", time.Now())

	envelope, err := coerceMessage(content)
	if err != nil {
		metrics.RecordOperation("decrypt", metrics.StatusError)
		return "", false, err
	}

	var key *ecdsa.PrivateKey
	if opts != nil {
		key = opts.PrivateKey
	}

	plaintext, ok, err := c.backend.Decrypt(envelope, key)
	metrics.RecordOperation("decrypt", status(ok, err))
	return plaintext, ok, err
}

// EncryptWebPush encrypts message for a browser push subscription using
// the aes128gcm content encoding. publicKey is the subscriber's p256dh
// key and authSecret its auth parameter.
func (c *Controller) EncryptWebPush(message any, publicKey *ecdsa.PublicKey, authSecret []byte) ([]byte, error) {
	defer metrics.ObserveDuration("encrypt_webpush", time.Now())

	plaintext, err := coerceMessage(message)
	if err != nil {
		metrics.RecordOperation("encrypt_webpush", metrics.StatusError)
		return nil, err
	}

	body, err := c.backend.EncryptWebPush(plaintext, publicKey, authSecret)
	metrics.RecordOperation("encrypt_webpush", status(body != nil, err))
	return body, err
}

// Sign produces a raw r||s ECDSA-SHA256 signature over data with the
// context's private key. (nil, nil) means no private key is available.
func (c *Controller) Sign(data []byte) ([]byte, error) {
	defer metrics.ObserveDuration("sign", time.Now())

	sig, err := c.backend.Sign(data)
	metrics.RecordOperation("sign", status(sig != nil, err))
	return sig, err
}

// Loaded reports whether the context currently resolves a private key,
// without triggering generation side effects beyond the backend's own
// policy.
func (c *Controller) Loaded() bool {
	key, err := c.backend.PrivateKey()
	return err == nil && key != nil
}

// Mode returns the storage policy the controller was built with.
func (c *Controller) Mode() storage.Mode {
	return c.mode
}

// coerceMessage accepts the two supported payload types. Any other type
// is an API misuse and fails loudly instead of being stringified.
func coerceMessage(message any) ([]byte, error) {
	switch v := message.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMessageType, message)
	}
}

func status(ok bool, err error) string {
	switch {
	case errors.Is(err, ErrUnavailable):
		return metrics.StatusUnavailable
	case err != nil:
		return metrics.StatusError
	case !ok:
		return metrics.StatusMiss
	default:
		return metrics.StatusOK
	}
}
