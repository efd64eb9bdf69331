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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-pemkeys/pkg/encoding"
	"github.com/jeremyhahn/go-pemkeys/pkg/pemkeys"
)

var (
	encryptRecipient string
	cryptInFile      string
)

// encryptCmd seals stdin or a file into a hybrid-encryption envelope
var encryptCmd = &cobra.Command{
	Use:   "encrypt [message]",
	Short: "Encrypt a message into a portable envelope",
	Long: `Encrypt a message with hybrid elliptic-curve encryption. The result
is a self-contained base64 envelope decryptable only by the holder of
the matching private key. The recipient defaults to the context's own
public key; use --recipient to encrypt for another party's PEM public
key file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		message, err := readPayload(args)
		if err != nil {
			handleError(err)
		}

		controller, err := getConfig().CreateController(true)
		if err != nil {
			handleError(err)
		}

		var opts *pemkeys.EncryptOptions
		if encryptRecipient != "" {
			pem, err := os.ReadFile(encryptRecipient)
			if err != nil {
				handleError(fmt.Errorf("failed to read recipient key: %w", err))
			}
			pub, err := encoding.DecodePublicKeyPEM(pem)
			if err != nil {
				handleError(err)
			}
			opts = &pemkeys.EncryptOptions{PublicKey: pub}
		}

		envelope, ok, err := controller.Encrypt(message, opts)
		if err != nil {
			handleError(err)
		}
		if !ok {
			handleError(errors.New("no usable public key for encryption"))
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintResult("envelope", envelope); err != nil {
			handleError(err)
		}
	},
}

// decryptCmd opens a hybrid-encryption envelope
var decryptCmd = &cobra.Command{
	Use:   "decrypt [envelope]",
	Short: "Decrypt a hybrid-encryption envelope",
	Long: `Decrypt an envelope produced by the encrypt command with the
context's private key.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		envelope, err := readPayload(args)
		if err != nil {
			handleError(err)
		}

		controller, err := getConfig().CreateController(false)
		if err != nil {
			handleError(err)
		}

		plaintext, ok, err := controller.Decrypt(envelope, nil)
		if err != nil {
			handleError(err)
		}
		if !ok {
			handleError(errors.New("decryption failed: no key or invalid envelope"))
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintResult("plaintext", plaintext); err != nil {
			handleError(err)
		}
	},
}

// signCmd produces a raw ECDSA signature
var signCmd = &cobra.Command{
	Use:   "sign [data]",
	Short: "Sign data with the context's private key",
	Long: `Produce a raw r||s ECDSA-SHA256 signature over the given data,
printed base64url encoded.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readPayload(args)
		if err != nil {
			handleError(err)
		}

		controller, err := getConfig().CreateController(true)
		if err != nil {
			handleError(err)
		}

		sig, err := controller.Sign(data)
		if err != nil {
			handleError(err)
		}
		if sig == nil {
			handleError(errors.New("no private key available for signing"))
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if err := printer.PrintResult("signature", base64.RawURLEncoding.EncodeToString(sig)); err != nil {
			handleError(err)
		}
	},
}

// readPayload resolves the command payload: positional argument, --in
// file, or stdin.
func readPayload(args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	if cryptInFile != "" {
		return os.ReadFile(cryptInFile)
	}
	return io.ReadAll(os.Stdin)
}

func init() {
	encryptCmd.Flags().StringVarP(&encryptRecipient, "recipient", "r", "",
		"PEM public key file of the recipient")
	encryptCmd.Flags().StringVar(&cryptInFile, "in", "", "read the message from a file")
	decryptCmd.Flags().StringVar(&cryptInFile, "in", "", "read the envelope from a file")
	signCmd.Flags().StringVar(&cryptInFile, "in", "", "read the data from a file")
}
