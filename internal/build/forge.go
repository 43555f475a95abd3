package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ForgeBinEnv overrides the external build tool binary (default "forge").
const ForgeBinEnv = "ACTL_FORGE_BIN"

// Source files are looked up per contract name with these extensions, in
// order, across the candidate source directories.
var (
	sourceExtensions = []string{".a.sol", ".sol"}
	sourceDirs       = []string{"assertions/src", "src", "."}
)

// Error is a build failure. Compilation failures are deterministic, so the
// adapter never retries; Output carries the external tool's diagnostics
// verbatim.
type Error struct {
	Reason string
	Output string
}

func (e *Error) Error() string {
	if e.Output == "" {
		return e.Reason
	}
	return e.Reason + "\n" + strings.TrimRight(e.Output, "\n")
}

// ArityError reports a constructor-argument count mismatch, detected from
// the compiled ABI before anything is sent over the network.
type ArityError struct {
	Contract string
	Want     int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf(
		"constructor of %s expects %d argument(s), got %d — pass them as: actl store %s <arg0> <arg1> …",
		e.Contract, e.Want, e.Got, e.Contract,
	)
}

// Runner invokes the external Forge-compatible build tool.
type Runner struct {
	Bin  string // tool binary, resolved via PATH
	Root string // project root; empty means the current directory
}

// NewRunner creates a Runner for the given project root, honoring the
// ACTL_FORGE_BIN override.
func NewRunner(root string) *Runner {
	bin := os.Getenv(ForgeBinEnv)
	if bin == "" {
		bin = "forge"
	}
	return &Runner{Bin: bin, Root: root}
}

// BuildAndFlatten compiles the project, locates the named contract's
// artifact, derives its constructor signature from the ABI, validates the
// given constructor arguments against it, and flattens the contract source.
func (r *Runner) BuildAndFlatten(ctx context.Context, contract string, constructorArgs []string) (*Artifact, error) {
	if out, err := r.run(ctx, "build"); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("compiling %s failed", contract), Output: out}
	}

	srcFile, srcPath, err := r.findSource(contract)
	if err != nil {
		return nil, err
	}

	raw, err := r.readArtifact(srcFile, contract)
	if err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing ABI of %s: %v", contract, err)}
	}

	inputs := parsed.Constructor.Inputs
	if len(inputs) != len(constructorArgs) {
		return nil, &ArityError{Contract: contract, Want: len(inputs), Got: len(constructorArgs)}
	}

	types := make([]string, len(inputs))
	for i, in := range inputs {
		types[i] = in.Type.String()
	}

	flattened, err := r.run(ctx, "flatten", srcPath)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("flattening %s failed", contract), Output: flattened}
	}

	bytecode := raw.DeployedBytecode.Object
	if bytecode == "" {
		return nil, &Error{Reason: fmt.Sprintf("artifact of %s has no deployed bytecode", contract)}
	}
	if !strings.HasPrefix(bytecode, "0x") {
		bytecode = "0x" + bytecode
	}

	return &Artifact{
		Name:            contract,
		Bytecode:        bytecode,
		FlattenedSource: flattened,
		ConstructorSig:  "constructor(" + strings.Join(types, ",") + ")",
	}, nil
}

// Passthrough runs the external tool with inherited stdio, for the `test`
// and `build` passthrough commands. The tool's exit status is the returned
// *exec.ExitError, if any.
func (r *Runner) Passthrough(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Dir = r.Root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// run executes the tool and returns its combined output. A non-zero exit
// returns the output alongside the error so diagnostics can be surfaced.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Dir = r.Root
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// findSource locates the contract's source file by naming convention.
func (r *Runner) findSource(contract string) (file, path string, err error) {
	for _, dir := range sourceDirs {
		for _, ext := range sourceExtensions {
			name := contract + ext
			candidate := filepath.Join(r.Root, dir, name)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return name, candidate, nil
			}
		}
	}
	return "", "", &Error{Reason: fmt.Sprintf(
		"contract %s not found — expected %s.a.sol or %s.sol under the project source directories",
		contract, contract, contract,
	)}
}
