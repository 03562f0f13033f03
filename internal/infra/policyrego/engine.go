package policyrego

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"complyd/internal/domain"
)

const defaultQuery = "data.complyd.access.result"

//go:embed policy.rego
var policySource string

// Engine evaluates capability decisions against the embedded access policy.
// The policy is compiled once at construction; evaluation is deterministic
// for a given input.
type Engine struct {
	query rego.PreparedEvalQuery
}

func NewEngine(ctx context.Context) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.Module("policy.rego", policySource),
		rego.StrictBuiltinErrors(true),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Check(ctx context.Context, input domain.CapabilityInput) (domain.CapabilityDecision, error) {
	if e == nil {
		return domain.CapabilityDecision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.CapabilityDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.CapabilityDecision{}, errors.New("empty policy result")
	}
	decision, err := decodeDecision(results[0].Expressions[0].Value)
	if err != nil {
		return domain.CapabilityDecision{}, err
	}
	sort.Strings(decision.Denies)
	return decision, nil
}

func decodeDecision(value any) (domain.CapabilityDecision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.CapabilityDecision{}, err
	}
	var decision domain.CapabilityDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return domain.CapabilityDecision{}, err
	}
	return decision, nil
}

var _ domain.CapabilityChecker = (*Engine)(nil)
