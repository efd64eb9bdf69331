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

import "errors"

var (
	// ErrInvalidConfig is returned when a Store is constructed without a
	// usable configuration.
	ErrInvalidConfig = errors.New("keystore: invalid configuration")

	// ErrKeyGeneration is returned when generating or encoding a fresh
	// key pair fails. File write failures are not errors; they are
	// routine refusals reported through Keygen's boolean result.
	ErrKeyGeneration = errors.New("keystore: key generation failed")
)
