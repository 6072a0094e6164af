package toolchain

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	assembler := []string{"clang", "-arch", "arm64"}
	argv, err := Command(assembler, "main.s", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"clang", "-arch", "arm64", "-o", "main", "main.s"}, argv)

	// the configured slice is not modified
	assert.Equal(t, []string{"clang", "-arch", "arm64"}, assembler)
}

func TestEmptyCommand(t *testing.T) {
	_, err := Command(nil, "main.s", "main")
	require.Error(t, err)
}

func TestMissingAssembler(t *testing.T) {
	err := Assemble(context.Background(), []string{"/nonexistent/tinyc-as"}, "main.s", "main", ioutil.Discard, ioutil.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/tinyc-as failed")
}
