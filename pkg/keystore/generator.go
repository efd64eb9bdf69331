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

package keystore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-pemkeys/pkg/encoding"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

// Keygen generates a fresh P-256 key pair for this context and persists
// both PEM files.
//
// It refuses (false, nil) when:
//   - the storage mode forbids persistence (memory mode, or no directory)
//   - a pair already exists for this context and force is false
//   - either file write fails
//
// The pair invariant is that both files exist or neither does. The
// private key file is written first; if the public key write then fails,
// every file written during this attempt is removed before returning.
//
// With force set, any existing pair is overwritten.
//
// The error return is reserved for key generation or encoding failures;
// storage outcomes are routine and only influence the boolean.
func (s *Store) Keygen(force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mode.Persistent() || s.dir == "" {
		s.log.Debugf("keystore: keygen disabled, reason=no-write-path mode=%s", s.mode)
		return false, nil
	}

	pubName := s.filename(PublicKeyFilename)
	prvName := s.filename(PrivateKeyFilename)

	if !force {
		if exists, err := s.backend.Exists(pubName); err == nil && exists {
			s.log.Debugf("keystore: keygen skipped; public key already exists: %s", pubName)
			return false, nil
		}
		if exists, err := s.backend.Exists(prvName); err == nil && exists {
			s.log.Debugf("keystore: keygen skipped; private key already exists: %s", prvName)
			return false, nil
		}
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	privatePEM, err := encoding.EncodePrivateKeyPEM(privateKey, s.password)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	publicPEM, err := encoding.EncodePublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	if err := s.backend.Put(prvName, privatePEM, &storage.Options{Permissions: 0600}); err != nil {
		s.log.Warnf("keystore: error writing private PEM file %s: %v", prvName, err)
		s.cleanup(prvName, pubName)
		return false, nil
	}

	if err := s.backend.Put(pubName, publicPEM, &storage.Options{Permissions: 0644}); err != nil {
		s.log.Warnf("keystore: error writing public PEM file %s: %v", pubName, err)
		s.cleanup(prvName, pubName)
		return false, nil
	}

	s.log.Infof("keystore: wrote public/private PEM key pair %s/%s", s.dir, pubName)
	return true, nil
}

// cleanup removes every file a failed generation attempt may have left
// behind so the context is never stuck with half a pair.
func (s *Store) cleanup(names ...string) {
	for _, name := range names {
		if err := s.backend.Delete(name); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.log.Warnf("keystore: failed to remove partial key file %s: %v", name, err)
		}
	}
}
