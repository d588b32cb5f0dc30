// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Job definition types and loading

package jobs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Recognized definition file extensions
const (
	ExtTOML = ".toml"
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidName       = errors.New("invalid job name")
	ErrDuplicateName     = errors.New("duplicate job name")
	ErrUnsupportedFormat = errors.New("unsupported definition format")
)

// namePattern keeps names usable as a single, visible path element; dot
// names are reserved for the workspace root's own entries (.staging)
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// Definition describes one repository mirror task
type Definition struct {
	Name   string `toml:"name" yaml:"name"`
	Source string `toml:"source" yaml:"source"`
	Target string `toml:"target" yaml:"target"`

	// Path is the file the definition was loaded from
	Path string `toml:"-" yaml:"-"`
}

// String returns a short representation for logs
func (d Definition) String() string {
	return fmt.Sprintf("%s (%s -> %s)", d.Name, d.Source, d.Target)
}

// IsDefinitionFile reports whether the file name carries a recognized extension
func IsDefinitionFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtTOML, ExtYAML, ExtYML:
		return true
	default:
		return false
	}
}

// Load reads and validates a definition from a TOML or YAML file
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read %s: %w", path, err)
	}

	def, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Definition{}, fmt.Errorf("parse %s: %w", path, err)
	}
	def.Path = path

	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid %s: %w", path, err)
	}

	return def, nil
}

// Parse decodes a definition; unknown fields are rejected
func Parse(data []byte, ext string) (Definition, error) {
	var def Definition

	switch strings.ToLower(ext) {
	case ExtTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return Definition{}, err
		}
	case ExtYAML, ExtYML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return Definition{}, err
		}
	default:
		return Definition{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	def.Name = strings.TrimSpace(def.Name)
	def.Source = strings.TrimSpace(def.Source)
	def.Target = strings.TrimSpace(def.Target)

	return def, nil
}

// Validate checks that every required field is present and the name is safe
func (d Definition) Validate() error {
	var errs error

	if d.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: name", ErrMissingField))
	} else if !namePattern.MatchString(d.Name) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrInvalidName, d.Name))
	}
	if d.Source == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: source", ErrMissingField))
	}
	if d.Target == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: target", ErrMissingField))
	}

	return errs
}
