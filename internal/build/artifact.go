package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Artifact is the transient output of one build-and-flatten run. It is
// consumed by the DA submission in the same invocation and never persisted.
type Artifact struct {
	Name            string
	Bytecode        string // deployed bytecode, 0x-prefixed
	FlattenedSource string
	ConstructorSig  string // e.g. "constructor(address,uint256)"
}

// Digest returns the keccak256 digest of the deployed bytecode, shown next
// to the DA-assigned artifact id in command output.
func (a *Artifact) Digest() (string, error) {
	code, err := hexutil.Decode(a.Bytecode)
	if err != nil {
		return "", fmt.Errorf("decoding bytecode of %s: %w", a.Name, err)
	}
	return crypto.Keccak256Hash(code).Hex(), nil
}

// rawArtifact is the subset of the tool's artifact JSON the adapter needs.
type rawArtifact struct {
	ABI              json.RawMessage `json:"abi"`
	DeployedBytecode struct {
		Object string `json:"object"`
	} `json:"deployedBytecode"`
}

// readArtifact loads out/<srcFile>/<contract>.json from the project root.
func (r *Runner) readArtifact(srcFile, contract string) (*rawArtifact, error) {
	path := filepath.Join(r.Root, "out", srcFile, contract+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("artifact of %s not found at %s — did the build produce it?", contract, path)}
	}
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing artifact of %s: %v", contract, err)}
	}
	return &raw, nil
}
