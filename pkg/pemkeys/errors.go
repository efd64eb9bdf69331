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

import "errors"

var (
	// ErrUnavailable is returned by every operation when the controller
	// was built without a working crypto capability. It signals "this
	// feature cannot function here", never "this call failed".
	ErrUnavailable = errors.New("pemkeys: PEM support unavailable")

	// ErrInvalidMessageType is returned when a message or envelope is
	// neither a string nor a byte slice. This marks caller misuse and is
	// deliberately loud, unlike cryptographic misses which are silent.
	ErrInvalidMessageType = errors.New("pemkeys: message must be a string or byte slice")

	// ErrInvalidConfig is returned when a controller is constructed
	// without a usable configuration.
	ErrInvalidConfig = errors.New("pemkeys: invalid configuration")
)
