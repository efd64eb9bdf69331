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

package vapid

import "errors"

var (
	// ErrInvalidOptions is returned when signer options fail validation.
	ErrInvalidOptions = errors.New("vapid: invalid options")

	// ErrInvalidEndpoint is returned when a push endpoint URL cannot be
	// reduced to an origin for the audience claim.
	ErrInvalidEndpoint = errors.New("vapid: invalid push endpoint")

	// ErrNoSigningKey is returned when the controller has no private key
	// to sign with.
	ErrNoSigningKey = errors.New("vapid: no signing key available")
)
