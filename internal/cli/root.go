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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pemkeys",
	Short: "go-pemkeys CLI - PEM key pair and hybrid encryption tool",
	Long: `go-pemkeys CLI manages elliptic-curve PEM key pairs and performs
hybrid encryption, web push encryption and raw signing with them.

A key context is a directory plus an optional name; named contexts
prefix their key files so several pairs can share one directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Initialize global config
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&globalConfig.ConfigFile, "config", "",
		"config file (default is $HOME/.pemkeys.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.KeyDir, "key-dir", "d", "",
		"directory for PEM key storage")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.Name, "name", "n", "",
		"key context name (prefixes the key filenames)")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.Mode, "mode", "m", "auto",
		"storage mode (memory, flush, auto)")
	rootCmd.PersistentFlags().StringVar(&globalConfig.PublicKeyfile, "public-keyfile", "",
		"explicit public key file path")
	rootCmd.PersistentFlags().StringVar(&globalConfig.PrivateKeyfile, "private-keyfile", "",
		"explicit private key file path")
	rootCmd.PersistentFlags().StringVar(&globalConfig.Password, "password", "",
		"password for encrypted private key PEM files")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat, "output", "o", "text",
		"output format (text, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&globalConfig.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(webpushCmd)
	rootCmd.AddCommand(vapidCmd)
}

// initConfig layers the config file and environment over flag defaults.
// Explicit flags always win.
func initConfig() {
	if globalConfig.ConfigFile != "" {
		viper.SetConfigFile(globalConfig.ConfigFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".pemkeys")
		}
	}

	viper.SetEnvPrefix("PEMKEYS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		printVerbose("Using config file: %s", viper.ConfigFileUsed())
	}

	applyConfigValue := func(flag string, target *string) {
		if !rootCmd.PersistentFlags().Changed(flag) && viper.IsSet(flag) {
			*target = viper.GetString(flag)
		}
	}
	applyConfigValue("key-dir", &globalConfig.KeyDir)
	applyConfigValue("name", &globalConfig.Name)
	applyConfigValue("mode", &globalConfig.Mode)
	applyConfigValue("public-keyfile", &globalConfig.PublicKeyfile)
	applyConfigValue("private-keyfile", &globalConfig.PrivateKeyfile)
	applyConfigValue("password", &globalConfig.Password)
	applyConfigValue("output", &globalConfig.OutputFormat)
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	printer := NewPrinter(globalConfig.OutputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if globalConfig.Verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
