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

	"github.com/jeremyhahn/go-pemkeys/pkg/logging"
	"github.com/jeremyhahn/go-pemkeys/pkg/pemkeys"
	"github.com/jeremyhahn/go-pemkeys/pkg/storage"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// KeyDir is the directory holding the PEM key pair
	KeyDir string

	// Name is the key context name (prefixes the key filenames)
	Name string

	// Mode is the storage mode (memory, flush, auto)
	Mode string

	// PublicKeyfile / PrivateKeyfile pin explicit key file paths
	PublicKeyfile  string
	PrivateKeyfile string

	// Password protects the private key PEM at rest
	Password string

	// OutputFormat controls output formatting (text, json, yaml)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode:         "auto",
		OutputFormat: "text",
	}
}

// CreateController builds a controller for the configured key context.
// autogen enables on-demand key generation during resolution; commands
// that only inspect state pass false so they never create files.
func (c *Config) CreateController(autogen bool) (*pemkeys.Controller, error) {
	mode, err := storage.ParseMode(c.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid --mode: %w", err)
	}

	var password []byte
	if c.Password != "" {
		password = []byte(c.Password)
	}

	return pemkeys.New(&pemkeys.Config{
		Directory:      c.KeyDir,
		Name:           c.Name,
		Mode:           mode,
		Autogen:        autogen,
		PublicKeyfile:  c.PublicKeyfile,
		PrivateKeyfile: c.PrivateKeyfile,
		Password:       password,
		Logger:         logging.NewLogger(c.Verbose),
	})
}
