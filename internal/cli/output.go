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
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// KeyInfo is the resolved state of a key context as shown by the show
// command.
type KeyInfo struct {
	Directory      string `json:"directory" yaml:"directory"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Mode           string `json:"mode" yaml:"mode"`
	PublicKeyfile  string `json:"public_keyfile,omitempty" yaml:"public_keyfile,omitempty"`
	PrivateKeyfile string `json:"private_keyfile,omitempty" yaml:"private_keyfile,omitempty"`
	Loaded         bool   `json:"loaded" yaml:"loaded"`
	X962           string `json:"x962,omitempty" yaml:"x962,omitempty"`
}

func (p *Printer) PrintKeyInfo(info *KeyInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(info)
	case OutputFormatYAML:
		return p.printYAML(info)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Directory:        %s\n", orNone(info.Directory))
		if info.Name != "" {
			fmt.Fprintf(p.writer, "Name:             %s\n", info.Name)
		}
		fmt.Fprintf(p.writer, "Mode:             %s\n", info.Mode)
		fmt.Fprintf(p.writer, "Public key file:  %s\n", orNone(info.PublicKeyfile))
		fmt.Fprintf(p.writer, "Private key file: %s\n", orNone(info.PrivateKeyfile))
		fmt.Fprintf(p.writer, "Loaded:           %t\n", info.Loaded)
		if info.X962 != "" {
			fmt.Fprintf(p.writer, "X9.62 public key: %s\n", info.X962)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintResult prints a single named value
func (p *Printer) PrintResult(name, value string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{name: value})
	case OutputFormatYAML:
		return p.printYAML(map[string]interface{}{name: value})
	case OutputFormatText:
		fmt.Fprintln(p.writer, value)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintMessage prints a status message
func (p *Printer) PrintMessage(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"message": message})
	case OutputFormatYAML:
		return p.printYAML(map[string]interface{}{"message": message})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"error": err.Error()})
	case OutputFormatYAML:
		return p.printYAML(map[string]interface{}{"error": err.Error()})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(v interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (p *Printer) printYAML(v interface{}) error {
	encoder := yaml.NewEncoder(p.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
