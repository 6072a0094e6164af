package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingOptional(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), DefaultFile), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestMissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFile), true)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, ioutil.WriteFile(path, []byte(`
output: out.s
emit: llvm
symbol_prefix: "_"
assembler: [clang, -arch, arm64]
log_level: debug
`), 0644))

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "out.s", c.Output)
	assert.Equal(t, EmitLLVM, c.Emit)
	assert.Equal(t, []string{"clang", "-arch", "arm64"}, c.Assembler)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "_", c.Prefix("linux"))
}

func TestPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, ioutil.WriteFile(path, []byte("output: a.s\n"), 0644))

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, EmitAsm, c.Emit)
	assert.Equal(t, []string{"cc"}, c.Assembler)
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"emit":      "emit: wasm\n",
		"log level": "log_level: loud\n",
		"unknown":   "outptu: a.s\n",
		"assembler": "assembler: []\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			require.NoError(t, ioutil.WriteFile(path, []byte(body), 0644))
			_, err := Load(path, true)
			require.Error(t, err)
		})
	}
}

func TestPrefix(t *testing.T) {
	c := Default()
	assert.Equal(t, "_", c.Prefix("darwin"))
	assert.Equal(t, "", c.Prefix("linux"))

	empty := ""
	c.SymbolPrefix = &empty
	assert.Equal(t, "", c.Prefix("darwin"))
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Write(path, Default()))

	c, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
