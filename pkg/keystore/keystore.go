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

// Package keystore resolves, loads and generates the PEM key pair files
// belonging to a key context.
//
// A context is a directory plus an optional name. The default context
// stores its pair as public_key.pem / private_key.pem; a named context
// prefixes both files with "{name}-" so multiple contexts can share one
// directory. Writes are gated by the context's storage.Mode: a
// memory-mode context has no persistence target and key generation is
// always refused.
//
// Routine absence (no file yet, unreadable file, unparseable PEM) is
// reported through ok/state return values rather than errors; callers
// probe for keys as a normal branch of execution.
package keystore

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-pemkeys/pkg/encoding"
	"github.com/jeremyhahn/go-pemkeys/pkg/logging"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage/file"
)

// Canonical key pair filenames for the default (unnamed) context. Named
// contexts prefix these with "{name}-".
const (
	PublicKeyFilename  = "public_key.pem"
	PrivateKeyFilename = "private_key.pem"
)

// A PEM key file has no reason to exceed 8K; anything larger is refused
// before parsing.
const maxPEMFileSize = 8000

// Alternate filenames accepted for the default context when loading
// pre-existing keys produced by other tooling.
var (
	altPublicFilenames  = []string{"public.pem", "pub.pem"}
	altPrivateFilenames = []string{"private.pem", "prv.pem"}
)

// FileState qualifies the result of key file resolution.
type FileState int

const (
	// FileFound means the path resolves to an existing key file.
	FileFound FileState = iota

	// FileAbsent means nothing was explicitly configured and no default
	// file exists. The pair may still be generated.
	FileAbsent

	// FileBroken means an explicit keyfile was configured but does not
	// resolve to a usable file. This is a misconfiguration, not a miss:
	// callers must not fall back to generation.
	FileBroken
)

// Config describes a key context.
type Config struct {
	// Directory is where the PEM pair lives. Required unless Mode is
	// storage.ModeMemory.
	Directory string

	// Name is the optional context name used as the filename prefix.
	// It is normalized to lower case with surrounding separator
	// characters stripped.
	Name string

	// Mode is the storage policy. Non-persistent modes refuse keygen.
	Mode storage.Mode

	// PublicKeyfile / PrivateKeyfile are optional explicit key file
	// paths that bypass directory resolution entirely.
	PublicKeyfile  string
	PrivateKeyfile string

	// Password optionally encrypts the private key PEM at rest.
	Password []byte

	// Backend overrides the storage backend, mainly for tests. When nil
	// a file backend rooted at Directory is used for persistent modes
	// and a memory backend otherwise.
	Backend storage.Backend

	// Logger defaults to logging.DefaultLogger().
	Logger *logging.Logger
}

// Store resolves and persists the PEM pair of a single key context.
// Thread-safe.
type Store struct {
	mu       sync.Mutex
	dir      string
	name     string
	mode     storage.Mode
	pubFile  string
	prvFile  string
	password []byte
	backend  storage.Backend
	log      *logging.Logger
}

// New creates a Store for the given context.
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	mode := cfg.Mode
	if mode == "" {
		mode = storage.ModeAuto
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	backend := cfg.Backend
	if backend == nil {
		if mode.Persistent() && cfg.Directory != "" {
			var err error
			backend, err = file.New(cfg.Directory)
			if err != nil {
				return nil, err
			}
		} else {
			// Nothing may touch disk; every lookup misses
			backend = storage.NewMemory()
		}
	}

	return &Store{
		dir:      cfg.Directory,
		name:     normalizeName(cfg.Name),
		mode:     mode,
		pubFile:  cfg.PublicKeyfile,
		prvFile:  cfg.PrivateKeyfile,
		password: cfg.Password,
		backend:  backend,
		log:      log,
	}, nil
}

// Name returns the normalized context name ("" for the default context).
func (s *Store) Name() string {
	return s.name
}

// Mode returns the storage policy for this context.
func (s *Store) Mode() storage.Mode {
	return s.mode
}

// PublicKeyfile resolves the public key file for this context.
func (s *Store) PublicKeyfile() (string, FileState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(s.pubFile, s.filename(PublicKeyFilename), altPublicFilenames)
}

// PrivateKeyfile resolves the private key file for this context.
func (s *Store) PrivateKeyfile() (string, FileState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(s.prvFile, s.filename(PrivateKeyFilename), altPrivateFilenames)
}

// LoadPublicKey reads and parses the context's public key PEM.
// Returns (nil, false) for every routine miss: unresolved path,
// unreadable file, oversized file or unparseable PEM.
func (s *Store) LoadPublicKey() (*ecdsa.PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, state := s.resolve(s.pubFile, s.filename(PublicKeyFilename), altPublicFilenames)
	if state != FileFound {
		return nil, false
	}

	data, ok := s.read(path, s.pubFile != "")
	if !ok {
		return nil, false
	}

	key, err := encoding.DecodePublicKeyPEM(data)
	if err != nil {
		s.log.Debugf("keystore: unsupported public key file %s: %v", path, err)
		return nil, false
	}
	return key, true
}

// LoadPrivateKey reads and parses the context's private key PEM. The
// public half is derivable from the result, so a context holding only a
// private key file is fully usable.
// Returns (nil, false) for every routine miss.
func (s *Store) LoadPrivateKey() (*ecdsa.PrivateKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, state := s.resolve(s.prvFile, s.filename(PrivateKeyFilename), altPrivateFilenames)
	if state != FileFound {
		return nil, false
	}

	data, ok := s.read(path, s.prvFile != "")
	if !ok {
		return nil, false
	}

	key, err := encoding.DecodePrivateKeyPEM(data, s.password)
	if err != nil {
		s.log.Debugf("keystore: unsupported private key file %s: %v", path, err)
		return nil, false
	}
	return key, true
}

// filename returns the context-local storage key for a canonical name.
func (s *Store) filename(base string) string {
	if s.name == "" {
		return base
	}
	return s.name + "-" + base
}

// resolve implements the tri-state key file lookup. An explicit override
// is authoritative: if it does not resolve, the result is FileBroken and
// callers must not fall back to generation.
func (s *Store) resolve(override, canonical string, alternates []string) (string, FileState) {
	if override != "" {
		if fileExists(override) {
			return override, FileFound
		}
		return "", FileBroken
	}

	if s.dir == "" || !s.mode.Persistent() {
		return "", FileAbsent
	}

	candidates := []string{canonical}
	if s.name == "" {
		candidates = append(candidates, alternates...)
	}
	for _, candidate := range candidates {
		exists, err := s.backend.Exists(candidate)
		if err != nil {
			s.log.Warnf("keystore: failed to probe %s: %v", candidate, err)
			continue
		}
		if exists {
			return filepath.Join(s.dir, candidate), FileFound
		}
	}
	return "", FileAbsent
}

// read fetches key file content, from the filesystem for explicit
// override paths and through the backend otherwise.
func (s *Store) read(path string, isOverride bool) ([]byte, bool) {
	var data []byte
	var err error
	if isOverride {
		data, err = os.ReadFile(path)
	} else {
		data, err = s.backend.Get(filepath.Base(path))
	}
	if err != nil {
		s.log.Debugf("keystore: could not access key file %s: %v", path, err)
		return nil, false
	}
	if len(data) > maxPEMFileSize {
		s.log.Warnf("keystore: key file %s exceeds %d bytes; refusing to parse", path, maxPEMFileSize)
		return nil, false
	}
	return data, true
}

// normalizeName lower-cases a context name and strips the separator
// characters that would corrupt the filename prefix.
func normalizeName(name string) string {
	return strings.ToLower(strings.Trim(name, " \t/-+!$@#*"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
