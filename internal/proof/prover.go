package proof

import (
	"context"
	"fmt"
	"os/exec"
)

//go:generate mockgen -source=prover.go -destination=mocks/prover_mock.go -package=mocks

// Prover runs the external proving tool. The executable path and arguments
// live in configuration so tests can substitute a fake without touching the
// engine.
type Prover interface {
	// Probe verifies the tool is invocable. Bounded by ctx.
	Probe(ctx context.Context) error
	// FullProve runs a complete proving pass: inputPath holds the circuit
	// inputs, proofPath and publicPath receive the outputs. Bounded by ctx;
	// when the deadline fires the subprocess is killed.
	FullProve(ctx context.Context, inputPath, wasmPath, zkeyPath, proofPath, publicPath string) error
}

// SnarkProver shells out to the snarkjs CLI.
type SnarkProver struct {
	Bin string
}

// NewSnarkProver builds a prover for the given binary ("snarkjs" by default).
func NewSnarkProver(bin string) *SnarkProver {
	if bin == "" {
		bin = "snarkjs"
	}
	return &SnarkProver{Bin: bin}
}

func (p *SnarkProver) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.Bin, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("prover probe failed: %w (output: %s)", err, truncate(out, 200))
	}
	return nil
}

func (p *SnarkProver) FullProve(ctx context.Context, inputPath, wasmPath, zkeyPath, proofPath, publicPath string) error {
	cmd := exec.CommandContext(ctx, p.Bin, "groth16", "fullprove",
		inputPath, wasmPath, zkeyPath, proofPath, publicPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("prover failed: %w (output: %s)", err, truncate(out, 500))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
