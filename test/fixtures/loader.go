// Package fixtures lays out disposable assertion projects for tests that
// exercise the build pipeline end to end without a real toolchain install.
package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// forgeStub answers the two subcommands the build pipeline issues: `build`
// succeeds without output and `flatten` echoes the source file.
const forgeStub = `#!/bin/sh
case "$1" in
  build) exit 0 ;;
  flatten) cat "$2" ;;
  *) echo "unknown subcommand $1" >&2; exit 1 ;;
esac
`

// ConstructorInput describes one constructor parameter of a fixture contract.
type ConstructorInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// WriteForgeStub writes the fake tool binary into dir and returns its path.
func WriteForgeStub(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "forge-stub")
	require.NoError(t, os.WriteFile(bin, []byte(forgeStub), 0o755))
	return bin
}

// WriteAssertionProject lays out a minimal assertion project under root: a
// source file in the conventional directory and a pre-baked artifact JSON in
// the tool's output layout.
func WriteAssertionProject(t *testing.T, root, contract, bytecode string, inputs []ConstructorInput) {
	t.Helper()

	srcDir := filepath.Join(root, "assertions", "src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	source := "// SPDX-License-Identifier: MIT\ncontract " + contract + " {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, contract+".a.sol"), []byte(source), 0o644))

	if inputs == nil {
		inputs = []ConstructorInput{}
	}
	artifact := map[string]any{
		"abi": []map[string]any{
			{"type": "constructor", "inputs": inputs},
		},
		"deployedBytecode": map[string]string{"object": bytecode},
	}
	outDir := filepath.Join(root, "out", contract+".a.sol")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(outDir, contract+".json"), data, 0o644))
}
