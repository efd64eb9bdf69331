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

// Package vapid mints Voluntary Application Server Identification
// tokens (RFC 8292) for authenticating web push deliveries. Tokens are
// ES256 JWTs signed with a controller's private key; the matching
// public key travels in the k= parameter so the push service can verify
// the signature.
package vapid

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-pemkeys/pkg/pemkeys"
)

// Token lifetime bounds. RFC 8292 caps validity at 24 hours.
const (
	DefaultExpiration = 12 * time.Hour
	MaxExpiration     = 24 * time.Hour
)

// Options configures token minting.
type Options struct {
	// Subject is the contact URI for the application server, either a
	// mailto: address or an https: URL. Required.
	Subject string

	// Expiration bounds token validity. Zero selects
	// DefaultExpiration; values above MaxExpiration are rejected.
	Expiration time.Duration
}

// Signer mints VAPID tokens with a controller's key pair.
type Signer struct {
	controller *pemkeys.Controller
	subject    string
	expiration time.Duration
}

// NewSigner validates opts and binds a Signer to the controller.
func NewSigner(controller *pemkeys.Controller, opts Options) (*Signer, error) {
	if controller == nil {
		return nil, fmt.Errorf("%w: nil controller", ErrInvalidOptions)
	}
	if err := validateSubject(opts.Subject); err != nil {
		return nil, err
	}

	expiration := opts.Expiration
	if expiration == 0 {
		expiration = DefaultExpiration
	}
	if expiration < 0 || expiration > MaxExpiration {
		return nil, fmt.Errorf("%w: expiration %s out of range", ErrInvalidOptions, expiration)
	}

	return &Signer{
		controller: controller,
		subject:    opts.Subject,
		expiration: expiration,
	}, nil
}

// Token mints a signed JWT for the push service at endpoint. The
// audience claim is the scheme and host of the endpoint URL, as the
// push service expects.
func (s *Signer) Token(endpoint string) (string, error) {
	audience, err := audienceOf(endpoint)
	if err != nil {
		return "", err
	}

	key, err := s.controller.PrivateKey()
	if err != nil {
		return "", err
	}
	if key == nil {
		return "", ErrNoSigningKey
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": audience,
		"exp": time.Now().Add(s.expiration).Unix(),
		"sub": s.subject,
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("vapid: token signing failed: %w", err)
	}
	return signed, nil
}

// AuthorizationHeader renders the complete Authorization header value
// for a push delivery to endpoint: "vapid t=<jwt>, k=<public key>".
func (s *Signer) AuthorizationHeader(endpoint string) (string, error) {
	token, err := s.Token(endpoint)
	if err != nil {
		return "", err
	}

	publicKey, err := s.controller.X962()
	if err != nil {
		return "", err
	}
	if publicKey == "" {
		return "", ErrNoSigningKey
	}

	return fmt.Sprintf("vapid t=%s, k=%s", token, publicKey), nil
}

// audienceOf reduces a push endpoint URL to its origin.
func audienceOf(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

func validateSubject(subject string) error {
	if strings.HasPrefix(subject, "mailto:") && len(subject) > len("mailto:") {
		return nil
	}
	if strings.HasPrefix(subject, "https://") && len(subject) > len("https://") {
		return nil
	}
	return fmt.Errorf("%w: subject must be a mailto: or https: URI", ErrInvalidOptions)
}
