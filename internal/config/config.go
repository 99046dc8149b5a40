// Package config handles doubledyn.yaml, the optional per-directory settings
// of the generator, and the constants shared by the command line tools.
//
// Example doubledyn.yaml:
//
//	package: shapes
//	output: "{name}_dispatch.go"
//	imports: [math]
//	goimports: true
//	header: |
//	  Shapes dispatch tables.
//	panic_prefix: shapes
package config

import (
	"bytes"
	"errors"
	"fmt"
	gotoken "go/token"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/doubledyn/internal/diagnostics"
	"github.com/funvibe/doubledyn/internal/token"
)

// Config represents a doubledyn.yaml file.
type Config struct {
	// Package is the package clause of generated files.
	Package string `yaml:"package,omitempty"`

	// Output is the path of the generated file relative to the spec file.
	// "{name}" expands to the spec file name without its extension.
	Output string `yaml:"output,omitempty"`

	// Imports are added to every generated file, as "path" or "name path".
	Imports []string `yaml:"imports,omitempty"`

	// GoImports runs goimports over the output. Defaults to true.
	GoImports *bool `yaml:"goimports,omitempty"`

	// Header is emitted as comment lines after the generated-code marker.
	Header string `yaml:"header,omitempty"`

	PanicPrefix string `yaml:"panic_prefix,omitempty"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no doubledyn.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a doubledyn.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses doubledyn.yaml content from bytes.
// The path argument is used for error messages and relative paths.
// Unknown keys are rejected so that typos do not go unnoticed.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, invalid(path, "parsing: %v", err)
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for doubledyn.yaml starting from dir and walking up
// to parent directories, similar to how .gitignore is found.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest doubledyn.yaml above dir, or the defaults.
func Discover(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func invalid(path, format string, args ...interface{}) *diagnostics.DiagnosticError {
	err := diagnostics.NewError(diagnostics.ErrC001, token.Token{}, fmt.Sprintf(format, args...))
	err.File = path
	return err
}

// validate checks the configuration for semantic errors.
func (c *Config) validate() error {
	if c.Package != "" && !gotoken.IsIdentifier(c.Package) {
		return invalid(c.Path, "package: %q is not a valid Go package name", c.Package)
	}

	if c.Output != "" {
		if !strings.HasSuffix(c.Output, ".go") {
			return invalid(c.Path, "output: %q must name a .go file", c.Output)
		}
		if strings.HasSuffix(c.Output, "_test.go") {
			return invalid(c.Path, "output: %q would be compiled only in tests", c.Output)
		}
		rest := strings.ReplaceAll(c.Output, OutputNamePlaceholder, "")
		if strings.ContainsAny(rest, "{}") {
			return invalid(c.Path, "output: unknown placeholder in %q, only %s is supported", c.Output, OutputNamePlaceholder)
		}
	}

	for i, imp := range c.Imports {
		if err := validateImport(imp); err != "" {
			return invalid(c.Path, "imports[%d]: %s", i, err)
		}
	}

	if strings.ContainsAny(c.PanicPrefix, "\n\r") {
		return invalid(c.Path, "panic_prefix: must be a single line")
	}

	return nil
}

func validateImport(imp string) string {
	imp = strings.TrimSpace(imp)
	if imp == "" {
		return "empty import"
	}
	path := imp
	if name, rest, ok := strings.Cut(imp, " "); ok {
		if name != "_" && name != "." && !gotoken.IsIdentifier(name) {
			return fmt.Sprintf("%q is not a valid import name", name)
		}
		path = strings.TrimSpace(rest)
	}
	if unq, err := strconv.Unquote(path); err == nil {
		path = unq
	}
	if path == "" || strings.ContainsAny(path, " \t\"") {
		return fmt.Sprintf("%q is not a valid import path", imp)
	}
	return ""
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.GoImports == nil {
		on := true
		c.GoImports = &on
	}
	if c.PanicPrefix == "" {
		c.PanicPrefix = DefaultPanicPrefix
	}
}

// OutputPath is the generated file for a spec file: the output template
// expanded and placed next to the spec.
func (c *Config) OutputPath(specPath string) string {
	base := filepath.Base(specPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	out := strings.ReplaceAll(c.Output, OutputNamePlaceholder, name)
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(filepath.Dir(specPath), out)
}

// HeaderLines splits Header into comment lines.
func (c *Config) HeaderLines() []string {
	header := strings.TrimRight(c.Header, "\n")
	if header == "" {
		return nil
	}
	return strings.Split(header, "\n")
}

// ResolvePackage applies the package precedence: explicit flag, then this
// config, then $GOPACKAGE. It returns "" when none is set.
func (c *Config) ResolvePackage(flag string) string {
	if flag != "" {
		return flag
	}
	if c.Package != "" {
		return c.Package
	}
	return os.Getenv(GoPackageEnv)
}
