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

package ecies

import "errors"

var (
	// ErrInvalidEnvelope is returned when an envelope cannot be parsed.
	ErrInvalidEnvelope = errors.New("ecies: invalid envelope")

	// ErrDecryptionFailed is returned when AEAD authentication fails,
	// typically because the wrong private key was used or the envelope
	// was altered in transit.
	ErrDecryptionFailed = errors.New("ecies: decryption failed")
)
