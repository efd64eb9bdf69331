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

package storage

import (
	"fmt"
	"strings"
)

// Mode is the storage policy applied to a key context. It decides whether
// the key store is allowed to persist generated key material.
type Mode string

const (
	// ModeMemory keeps all state in memory only. Key generation is
	// refused because there is no persistence target for the PEM files.
	ModeMemory Mode = "memory"

	// ModeFlush writes state to disk immediately.
	ModeFlush Mode = "flush"

	// ModeAuto writes state to disk opportunistically. For key material
	// it behaves exactly like ModeFlush; the distinction only matters to
	// general cache consumers.
	ModeAuto Mode = "auto"
)

// ParseMode converts a string to a Mode. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMemory:
		return ModeMemory, nil
	case ModeFlush:
		return ModeFlush, nil
	case ModeAuto:
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Persistent reports whether the mode permits writing to disk.
func (m Mode) Persistent() bool {
	return m == ModeFlush || m == ModeAuto
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}
