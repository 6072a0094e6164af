package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

const DefaultFile = "tinyc.yaml"

const (
	EmitAsm  = "asm"
	EmitLLVM = "llvm"
)

type Config struct {
	// Output defaults to the source path with its extension replaced.
	Output string `yaml:"output,omitempty"`
	Emit   string `yaml:"emit"`
	// SymbolPrefix is chosen from the host OS when unset.
	SymbolPrefix *string  `yaml:"symbol_prefix,omitempty"`
	Assembler    []string `yaml:"assembler"`
	LogLevel     string   `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Emit:      EmitAsm,
		Assembler: []string{"cc"},
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(path string, required bool) (Config, error) {
	c := Default()

	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("error reading %s: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("error reading %s: %w", path, err)
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Emit {
	case EmitAsm, EmitLLVM:
	default:
		return fmt.Errorf("unknown emit target %q, expected %q or %q", c.Emit, EmitAsm, EmitLLVM)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if len(c.Assembler) == 0 {
		return fmt.Errorf("assembler command must not be empty")
	}

	return nil
}

// Prefix is the symbol prefix for goos unless one was configured.
func (c Config) Prefix(goos string) string {
	if c.SymbolPrefix != nil {
		return *c.SymbolPrefix
	}
	if goos == "darwin" || goos == "ios" {
		return "_"
	}
	return ""
}

func Write(path string, c Config) error {
	fi, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer fi.Close()

	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if _, err := fi.Write(out); err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	return fi.Close()
}
