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
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/ecies"
	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/webpush"
	"github.com/jeremyhahn/go-pemkeys/pkg/keystore"
	"github.com/jeremyhahn/go-pemkeys/pkg/logging"
)

// CryptoBackend is the crypto capability behind a Controller. There are
// exactly two implementations: the real one bound to the key store and
// cipher packages, and the Unavailable() stub whose every method returns
// ErrUnavailable. The implementation is selected at construction time.
type CryptoBackend interface {
	// Keygen generates and persists a fresh key pair for the context.
	Keygen(force bool) (bool, error)

	// PublicKey resolves the context's public key. (nil, nil) means no
	// key could be resolved, a routine outcome.
	PublicKey() (*ecdsa.PublicKey, error)

	// PrivateKey resolves the context's private key. (nil, nil) means
	// no key could be resolved.
	PrivateKey() (*ecdsa.PrivateKey, error)

	// PublicKeyfile and PrivateKeyfile resolve the on-disk key file
	// locations without loading them.
	PublicKeyfile() (string, keystore.FileState, error)
	PrivateKeyfile() (string, keystore.FileState, error)

	// X962 renders the public key's uncompressed point as a base64url
	// string, or "" when no public key resolves.
	X962() (string, error)

	// Encrypt produces a hybrid-encryption envelope for the recipient
	// key (the context's own public key when publicKey is nil).
	// ok=false reports a routine failure such as no resolvable key.
	Encrypt(message []byte, publicKey *ecdsa.PublicKey) (string, bool, error)

	// Decrypt opens a hybrid-encryption envelope. ok=false covers all
	// routine failures: no key, malformed envelope, failed
	// authentication.
	Decrypt(content []byte, privateKey *ecdsa.PrivateKey) (string, bool, error)

	// EncryptWebPush encrypts a message for a browser push subscription
	// per RFC 8291 / RFC 8188.
	EncryptWebPush(message []byte, publicKey *ecdsa.PublicKey, authSecret []byte) ([]byte, error)

	// Sign produces a raw r||s ECDSA-SHA256 signature, or (nil, nil)
	// when no private key resolves.
	Sign(data []byte) ([]byte, error)
}

// cryptoBackend is the real capability implementation. It owns the key
// cache: keys are resolved lazily, cached for the controller's lifetime
// and only replaced wholesale by a forced regeneration.
type cryptoBackend struct {
	store   *keystore.Store
	autogen bool
	log     *logging.Logger

	mu  sync.Mutex
	pub *ecdsa.PublicKey
	prv *ecdsa.PrivateKey
}

func newCryptoBackend(cfg *Config) (*cryptoBackend, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	store, err := keystore.New(&keystore.Config{
		Directory:      cfg.Directory,
		Name:           cfg.Name,
		Mode:           cfg.Mode,
		PublicKeyfile:  cfg.PublicKeyfile,
		PrivateKeyfile: cfg.PrivateKeyfile,
		Password:       cfg.Password,
		Backend:        cfg.Storage,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	return &cryptoBackend{
		store:   store,
		autogen: cfg.Autogen,
		log:     log,
	}, nil
}

// Keygen generates a fresh pair. With force set, previously cached keys
// are discarded so stale material can never outlive its files.
func (b *cryptoBackend) Keygen(force bool) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if force {
		b.pub = nil
		b.prv = nil
	} else if b.pub != nil || b.prv != nil {
		b.log.Debugf("pemkeys: keygen skipped; keys already loaded for context %q", b.store.Name())
		return false, nil
	}

	ok, err := b.store.Keygen(force)
	if err != nil || !ok {
		return false, err
	}

	// Freshly written pair becomes the cached pair
	if prv, loaded := b.store.LoadPrivateKey(); loaded {
		b.prv = prv
		b.pub = &prv.PublicKey
	}
	return true, nil
}

func (b *cryptoBackend) PublicKey() (*ecdsa.PublicKey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.publicKeyLocked(true), nil
}

func (b *cryptoBackend) PrivateKey() (*ecdsa.PrivateKey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.privateKeyLocked(true), nil
}

// privateKeyLocked implements the resolution state machine:
// cached -> loaded from file -> generated (at most one attempt) ->
// unavailable. A broken explicit override short-circuits; generation is
// never a fallback for misconfiguration.
func (b *cryptoBackend) privateKeyLocked(allowGen bool) *ecdsa.PrivateKey {
	if b.prv != nil {
		return b.prv
	}

	_, state := b.store.PrivateKeyfile()
	switch state {
	case keystore.FileBroken:
		b.log.Warnf("pemkeys: configured private key file is not usable")
		return nil

	case keystore.FileFound:
		if prv, ok := b.store.LoadPrivateKey(); ok {
			b.prv = prv
			b.pub = &prv.PublicKey
			return prv
		}
		return nil
	}

	// FileAbsent: generate on demand if policy permits, then retry
	// exactly once. A second miss means generation itself failed.
	if allowGen && b.autogen {
		if ok, err := b.store.Keygen(false); err == nil && ok {
			return b.privateKeyLocked(false)
		}
	}
	b.log.Debugf("pemkeys: no PEM private key could be loaded")
	return nil
}

// publicKeyLocked mirrors privateKeyLocked, with one extra transition:
// when the public key file is missing or unreadable the public half is
// synthesized from the private key if that resolves.
func (b *cryptoBackend) publicKeyLocked(allowGen bool) *ecdsa.PublicKey {
	if b.pub != nil {
		return b.pub
	}

	_, state := b.store.PublicKeyfile()
	switch state {
	case keystore.FileBroken:
		b.log.Warnf("pemkeys: configured public key file is not usable")
		return nil

	case keystore.FileFound:
		if pub, ok := b.store.LoadPublicKey(); ok {
			b.pub = pub
			return pub
		}
	}

	// Derive from the private key when possible
	if prv := b.privateKeyLocked(allowGen); prv != nil {
		b.pub = &prv.PublicKey
		return b.pub
	}

	if state == keystore.FileAbsent {
		b.log.Debugf("pemkeys: no PEM public key could be loaded")
	}
	return nil
}

func (b *cryptoBackend) PublicKeyfile() (string, keystore.FileState, error) {
	path, state := b.store.PublicKeyfile()
	return path, state, nil
}

func (b *cryptoBackend) PrivateKeyfile() (string, keystore.FileState, error) {
	path, state := b.store.PrivateKeyfile()
	return path, state, nil
}

// X962 is the human-shareable key identifier: the base64url encoding of
// the public key's uncompressed elliptic-curve point.
func (b *cryptoBackend) X962() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pub := b.publicKeyLocked(true)
	if pub == nil {
		return "", nil
	}

	ecdhPub, err := pub.ECDH()
	if err != nil {
		return "", fmt.Errorf("pemkeys: failed to serialize public key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(ecdhPub.Bytes()), nil
}

func (b *cryptoBackend) Encrypt(message []byte, publicKey *ecdsa.PublicKey) (string, bool, error) {
	if publicKey == nil {
		b.mu.Lock()
		publicKey = b.publicKeyLocked(true)
		b.mu.Unlock()
		if publicKey == nil {
			b.log.Debugf("pemkeys: no public key available for encryption")
			return "", false, nil
		}
	}

	envelope, err := ecies.Encrypt(rand.Reader, publicKey, message)
	if err != nil {
		return "", false, err
	}
	return envelope, true, nil
}

func (b *cryptoBackend) Decrypt(content []byte, privateKey *ecdsa.PrivateKey) (string, bool, error) {
	if privateKey == nil {
		b.mu.Lock()
		privateKey = b.privateKeyLocked(true)
		b.mu.Unlock()
		if privateKey == nil {
			b.log.Debugf("pemkeys: no private key available for decryption")
			return "", false, nil
		}
	}

	plaintext, err := ecies.Decrypt(privateKey, string(content))
	if err != nil {
		if errors.Is(err, ecies.ErrInvalidEnvelope) || errors.Is(err, ecies.ErrDecryptionFailed) {
			// Wrong key, tampered or unparseable content: a routine
			// outcome for callers probing encrypted payloads
			b.log.Debugf("pemkeys: decryption failed: %v", err)
			return "", false, nil
		}
		return "", false, err
	}
	return string(plaintext), true, nil
}

func (b *cryptoBackend) EncryptWebPush(message []byte, publicKey *ecdsa.PublicKey, authSecret []byte) ([]byte, error) {
	return webpush.Encrypt(rand.Reader, message, publicKey, authSecret)
}

// Sign produces an ES256-style signature: ECDSA over P-256 with SHA-256,
// serialized as raw r||s (32 bytes each), the form JWT and VAPID expect.
func (b *cryptoBackend) Sign(data []byte) ([]byte, error) {
	b.mu.Lock()
	prv := b.privateKeyLocked(true)
	b.mu.Unlock()
	if prv == nil {
		return nil, nil
	}

	digest := sha256.Sum256(data)
	r, s, err := ecdsa.Sign(rand.Reader, prv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("pemkeys: signing failed: %w", err)
	}

	byteLen := (prv.Curve.Params().BitSize + 7) / 8
	sig := make([]byte, 2*byteLen)
	r.FillBytes(sig[:byteLen])
	s.FillBytes(sig[byteLen:])
	return sig, nil
}

// Verify interface compliance at compile time
var _ CryptoBackend = (*cryptoBackend)(nil)
