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

package webpush

import "errors"

var (
	// ErrInvalidCurve is returned when the recipient key is not P-256.
	// RFC 8291 permits no other curve.
	ErrInvalidCurve = errors.New("webpush: recipient key must be P-256")

	// ErrInvalidAuthSecret is returned when the subscription auth secret
	// is missing.
	ErrInvalidAuthSecret = errors.New("webpush: auth secret required")

	// ErrMessageTooLong is returned when the message does not fit in a
	// single aes128gcm record.
	ErrMessageTooLong = errors.New("webpush: message exceeds record size")
)
