// Package pipeline runs the two analysis layers over a parsed module:
// syntax-directed constraint generation, then an independent solve of the
// generated stream. Callers hand the combined result to the presenter or
// inspect it directly.
package pipeline

import (
	"github.com/quill-lang/quill/internal/analyzer"
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/solver"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Options selects the analysis mode and seeds the initial scope with
// everything visible from dependencies.
type Options struct {
	Tolerant bool
	Env      *typesystem.Env
	Adts     *typesystem.AdtEnv
}

// AnalysisResult pairs the generation output with the solve output for one
// module.
type AnalysisResult struct {
	Layer1 *analyzer.Layer1Result
	Layer2 *solver.Result
}

// Analyze generates constraints for prog and solves them. In strict mode a
// generation-time semantic error aborts with a typed InferError; tolerant
// mode always yields a result, surfacing problems as diagnostics and holes.
// Generation diagnostics come before solver diagnostics in the combined
// list.
func Analyze(prog *ast.Program, opts Options) (*AnalysisResult, error) {
	layer1, err := analyzer.Analyze(prog, analyzer.Options{
		Tolerant: opts.Tolerant,
		Env:      opts.Env,
		Adts:     opts.Adts,
	})
	if err != nil {
		return nil, err
	}

	layer2 := solver.Solve(layer1.Constraints, solver.Options{
		Alloc:     layer1.Alloc,
		Adts:      layer1.Adts,
		Holes:     layer1.Holes,
		NodeTypes: layer1.NodeTypeByID,
		Tolerant:  opts.Tolerant,
	})

	if len(layer1.Diagnostics) > 0 {
		merged := make([]diagnostics.Diagnostic, 0, len(layer1.Diagnostics)+len(layer2.Diagnostics))
		merged = append(merged, layer1.Diagnostics...)
		merged = append(merged, layer2.Diagnostics...)
		layer2.Diagnostics = merged
	}

	return &AnalysisResult{Layer1: layer1, Layer2: layer2}, nil
}
