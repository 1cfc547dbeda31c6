// Package privacy evaluates an OPA Rego policy deciding which event property
// keys must be redacted or dropped before an event leaves the process.
package privacy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyPackage = "modtel.privacy"

// Default Rego policy: nothing beyond the builder's own redaction.
const defaultRegoPolicy = `package modtel.privacy

default redact = []
default drop = []
`

// Filter evaluates property-privacy policies compiled at construction.
type Filter struct {
	compiler *ast.Compiler
}

// NewFilter compiles the given Rego policy source. Empty source uses the
// built-in default policy (redact nothing, drop nothing).
func NewFilter(policySource string) (*Filter, error) {
	if policySource == "" {
		policySource = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"privacy.rego": policySource})
	if err != nil {
		return nil, fmt.Errorf("compile privacy policy: %w", err)
	}
	return &Filter{compiler: compiler}, nil
}

// NewFilterFromFile loads and compiles the policy at path. Empty path uses the
// built-in default policy.
func NewFilterFromFile(path string) (*Filter, error) {
	if path == "" {
		return NewFilter("")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read privacy policy: %w", err)
	}
	return NewFilter(string(src))
}

// Evaluate returns the property keys to redact and to drop for the given
// event. The policy sees input {"event": name, "properties": {...}} and
// answers through data.modtel.privacy.redact and data.modtel.privacy.drop,
// each a list of key names.
func (f *Filter) Evaluate(ctx context.Context, eventName string, properties map[string]string) (redact, drop []string, err error) {
	props := make(map[string]interface{}, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	input := map[string]interface{}{
		"event":      eventName,
		"properties": props,
	}

	redact, err = f.queryKeys(ctx, "data."+policyPackage+".redact", input)
	if err != nil {
		return nil, nil, err
	}
	drop, err = f.queryKeys(ctx, "data."+policyPackage+".drop", input)
	if err != nil {
		return nil, nil, err
	}
	return redact, drop, nil
}

func (f *Filter) queryKeys(ctx context.Context, query string, input map[string]interface{}) ([]string, error) {
	q := rego.New(
		rego.Query(query),
		rego.Compiler(f.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("eval %s: %w", query, err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}
	list, ok := rs[0].Expressions[0].Value.([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
