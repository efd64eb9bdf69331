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

package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-pemkeys/pkg/crypto/ecdh"
	"github.com/jeremyhahn/go-pemkeys/pkg/vapid"
)

var (
	webpushSubKey     string
	webpushAuthSecret string
	webpushOutFile    string

	vapidSubject  string
	vapidEndpoint string
)

// webpushCmd encrypts a message for a browser push subscription
var webpushCmd = &cobra.Command{
	Use:   "webpush [message]",
	Short: "Encrypt a message for a web push subscription",
	Long: `Encrypt a message with the aes128gcm content encoding used by
browser push services. --subscriber-key is the subscription's p256dh
value and --auth its auth value, both base64url as delivered by the
browser. The binary body is written to --out or stdout.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		message, err := readPayload(args)
		if err != nil {
			handleError(err)
		}

		subscriberKey, err := decodeBase64URL(webpushSubKey)
		if err != nil {
			handleError(fmt.Errorf("invalid --subscriber-key: %w", err))
		}
		authSecret, err := decodeBase64URL(webpushAuthSecret)
		if err != nil {
			handleError(fmt.Errorf("invalid --auth: %w", err))
		}

		publicKey, err := ecdh.ParseUncompressedPoint(subscriberKey)
		if err != nil {
			handleError(fmt.Errorf("invalid --subscriber-key: %w", err))
		}

		controller, err := getConfig().CreateController(true)
		if err != nil {
			handleError(err)
		}

		body, err := controller.EncryptWebPush(message, publicKey, authSecret)
		if err != nil {
			handleError(err)
		}

		if webpushOutFile != "" {
			if err := os.WriteFile(webpushOutFile, body, 0644); err != nil {
				handleError(err)
			}
			return
		}
		if _, err := os.Stdout.Write(body); err != nil {
			handleError(err)
		}
	},
}

// vapidCmd mints a VAPID Authorization header for a push endpoint
var vapidCmd = &cobra.Command{
	Use:   "vapid",
	Short: "Mint a VAPID Authorization header",
	Long: `Mint a VAPID (RFC 8292) Authorization header for delivering web
push messages to the given endpoint, signed with the context's private
key.`,
	Run: func(cmd *cobra.Command, args []string) {
		controller, err := getConfig().CreateController(true)
		if err != nil {
			handleError(err)
		}

		signer, err := vapid.NewSigner(controller, vapid.Options{Subject: vapidSubject})
		if err != nil {
			handleError(err)
		}

		header, err := signer.AuthorizationHeader(vapidEndpoint)
		if err != nil {
			handleError(err)
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintResult("authorization", header); err != nil {
			handleError(err)
		}
	},
}

// decodeBase64URL accepts both padded and unpadded base64url input.
func decodeBase64URL(s string) ([]byte, error) {
	if decoded, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func init() {
	webpushCmd.Flags().StringVarP(&webpushSubKey, "subscriber-key", "k", "",
		"subscription p256dh public key (base64url)")
	webpushCmd.Flags().StringVarP(&webpushAuthSecret, "auth", "a", "",
		"subscription auth secret (base64url)")
	webpushCmd.Flags().StringVar(&webpushOutFile, "out", "",
		"write the encrypted body to a file instead of stdout")
	webpushCmd.Flags().StringVar(&cryptInFile, "in", "", "read the message from a file")
	_ = webpushCmd.MarkFlagRequired("subscriber-key")
	_ = webpushCmd.MarkFlagRequired("auth")

	vapidCmd.Flags().StringVarP(&vapidSubject, "subject", "s", "",
		"contact URI for the application server (mailto: or https:)")
	vapidCmd.Flags().StringVarP(&vapidEndpoint, "endpoint", "e", "",
		"push service endpoint URL")
	_ = vapidCmd.MarkFlagRequired("subject")
	_ = vapidCmd.MarkFlagRequired("endpoint")
}
