// Package policyopa evaluates door admission rules written in rego.
package policyopa

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"sort"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"

	"github.com/roshannn-07/fairpass/internal/domain"
)

const admissionQuery = "data.fairpass.admission.result"

//go:embed policy/admission.rego
var defaultPolicy string

type Engine struct {
	query      rego.PreparedEvalQuery
	policyHash string
}

// NewEngine compiles the admission policy at path, or the built-in policy
// when path is empty.
func NewEngine(ctx context.Context, path string) (*Engine, error) {
	name, source := "admission.rego", defaultPolicy
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name, source = path, string(raw)
	}

	capabilities := ast.CapabilitiesForThisVersion()
	capabilities.Builtins = filterBuiltins(capabilities.Builtins)
	compiler := ast.NewCompiler().WithCapabilities(capabilities)

	prepared, err := rego.New(
		rego.Query(admissionQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
		rego.Module(name, source),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(source))
	return &Engine{query: prepared, policyHash: hex.EncodeToString(sum[:])}, nil
}

// PolicyHash identifies the compiled policy source in logs.
func (e *Engine) PolicyHash() string {
	return e.policyHash
}

func (e *Engine) Evaluate(ctx context.Context, input domain.AdmissionInput) (domain.AdmissionResult, error) {
	if e == nil {
		return domain.AdmissionResult{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.AdmissionResult{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.AdmissionResult{}, errors.New("empty policy result")
	}
	result, err := decodeResult(results[0].Expressions[0].Value)
	if err != nil {
		return domain.AdmissionResult{}, err
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		return result.Deny[i].Code < result.Deny[j].Code
	})
	if len(result.Deny) > 0 {
		result.Allow = false
	}
	return result, nil
}

func decodeResult(value any) (domain.AdmissionResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.AdmissionResult{}, err
	}
	var result domain.AdmissionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.AdmissionResult{}, err
	}
	return result, nil
}
