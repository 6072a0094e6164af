// Package toolchain hands generated assembly to an external assembler and
// linker.
package toolchain

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Command builds the argv that turns asmPath into exePath, e.g.
// ["cc", "-o", "a.out", "a.s"].
func Command(assembler []string, asmPath, exePath string) ([]string, error) {
	if len(assembler) == 0 {
		return nil, fmt.Errorf("no assembler configured")
	}

	argv := append([]string{}, assembler...)
	argv = append(argv, "-o", exePath, asmPath)
	return argv, nil
}

func Assemble(ctx context.Context, assembler []string, asmPath, exePath string, stdout, stderr io.Writer) error {
	argv, err := Command(assembler, asmPath, exePath)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", argv[0], err)
	}
	return nil
}
