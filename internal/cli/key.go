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
	"os"

	"github.com/spf13/cobra"
)

var keygenForce bool

// keygenCmd generates and persists a key pair for the context
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a PEM key pair",
	Long: `Generate an elliptic-curve key pair and persist it as PEM files in
the key directory. Without --force an existing pair is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		controller, err := getConfig().CreateController(false)
		if err != nil {
			handleError(err)
		}

		generated, err := controller.Keygen(keygenForce)
		if err != nil {
			handleError(err)
		}

		printer := NewPrinter(getConfig().OutputFormat, os.Stdout)
		if !generated {
			_ = printer.PrintMessage("Key pair not generated (already present or mode forbids persistence)")
			os.Exit(2)
		}

		if path, _, err := controller.PublicKeyfile(); err == nil {
			printVerbose("Public key written to %s", path)
		}
		_ = printer.PrintMessage("Key pair generated")
	},
}

// showCmd prints the resolved state of the key context
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the key context state",
	Long: `Show the resolved key file locations, whether a key pair currently
loads, and the X9.62 public key identifier. Never generates keys.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		controller, err := cfg.CreateController(false)
		if err != nil {
			handleError(err)
		}

		pubPath, _, err := controller.PublicKeyfile()
		if err != nil {
			handleError(err)
		}
		prvPath, _, err := controller.PrivateKeyfile()
		if err != nil {
			handleError(err)
		}

		x962, err := controller.X962()
		if err != nil {
			handleError(err)
		}

		printer := NewPrinter(cfg.OutputFormat, os.Stdout)
		err = printer.PrintKeyInfo(&KeyInfo{
			Directory:      cfg.KeyDir,
			Name:           cfg.Name,
			Mode:           cfg.Mode,
			PublicKeyfile:  pubPath,
			PrivateKeyfile: prvPath,
			Loaded:         controller.Loaded(),
			X962:           x962,
		})
		if err != nil {
			handleError(err)
		}
	},
}

func init() {
	keygenCmd.Flags().BoolVarP(&keygenForce, "force", "f", false,
		"replace an existing key pair")
}
