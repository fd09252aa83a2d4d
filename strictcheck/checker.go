// Package strictcheck is the opt-in semantic layer above the structural
// validator. It translates each condition into a CEL expression and
// type-checks it against an environment built from the declared namespace
// list, so editors can surface condition problems the lenient compiler
// would otherwise paper over.
package strictcheck

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/sopscript/sop"
)

// Checker compiles condition expressions against a fixed CEL environment.
// Construct once, check many; it is immutable after construction.
type Checker struct {
	env        *cel.Env
	namespaces map[string]bool
}

// NewChecker creates a checker for the given namespace allow-list. Each
// namespace becomes a dynamically-typed CEL variable, mirroring how facts
// arrive as map[string]any at evaluation time.
func NewChecker(namespaces []string) (*Checker, error) {
	var opts []cel.EnvOption
	set := make(map[string]bool, len(namespaces))
	for _, ns := range namespaces {
		if err := validateIdentifier(ns); err != nil {
			return nil, fmt.Errorf("invalid namespace %q: %w", ns, err)
		}
		opts = append(opts, cel.Variable(ns, cel.DynType))
		set[ns] = true
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Checker{env: env, namespaces: set}, nil
}

// CheckCondition verifies one condition: the field path must be a valid
// namespace.field identifier chain rooted in a declared namespace, the
// operator must be in the known set, and the translated CEL expression
// must compile.
func (c *Checker) CheckCondition(cond sop.Condition) error {
	if err := c.validateFieldPath(cond.Field); err != nil {
		return err
	}

	expr, err := celExpression(cond)
	if err != nil {
		return err
	}

	_, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("condition on %q does not type-check: %w", cond.Field, issues.Err())
	}

	return nil
}

// Check walks every condition of every rule and collects diagnostics as
// strings, one per failing condition, in rule order. Disabled rules are
// checked too; they may be re-enabled later.
func (c *Checker) Check(s sop.SOP) []string {
	diagnostics := []string{}
	for i, r := range s.Rules {
		for j, cond := range r.Conditions {
			if err := c.CheckCondition(cond); err != nil {
				diagnostics = append(diagnostics,
					fmt.Sprintf("Rule %d, condition %d: %v", i+1, j+1, err))
			}
		}
	}
	return diagnostics
}

// validateFieldPath checks a dotted field path segment by segment and
// requires the first segment to be a declared namespace.
func (c *Checker) validateFieldPath(path string) error {
	if path == "" {
		return fmt.Errorf("field path cannot be empty")
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if err := validateIdentifier(seg); err != nil {
			return fmt.Errorf("invalid field path %q: %w", path, err)
		}
	}

	if len(c.namespaces) > 0 && !c.namespaces[segments[0]] {
		return fmt.Errorf("field path %q is not rooted in a declared namespace", path)
	}

	return nil
}

// celExpression translates a condition into CEL source. Unlike the script
// compiler this is strict: an unknown operator is an error, not a fallback.
func celExpression(cond sop.Condition) (string, error) {
	operand, err := celOperand(cond.Value)
	if err != nil {
		return "", err
	}

	switch cond.Operator {
	case sop.OpEquals:
		return cond.Field + " == " + operand, nil
	case sop.OpNotEquals:
		return cond.Field + " != " + operand, nil
	case sop.OpContains:
		return cond.Field + ".contains(" + operand + ")", nil
	case sop.OpNotContains:
		return "!" + cond.Field + ".contains(" + operand + ")", nil
	case sop.OpGreaterThan:
		return cond.Field + " > " + operand, nil
	case sop.OpLessThan:
		return cond.Field + " < " + operand, nil
	case sop.OpMatches:
		return cond.Field + ".matches(" + operand + ")", nil
	case sop.OpExists:
		return "has(" + cond.Field + ")", nil
	case sop.OpNotExists:
		return "!has(" + cond.Field + ")", nil
	default:
		return "", fmt.Errorf("unknown operator %q", string(cond.Operator))
	}
}

// celOperand renders a condition value as a CEL literal. JSON scalar
// syntax is valid CEL for strings, numbers, booleans, and null.
func celOperand(v sop.Value) (string, error) {
	switch v.Kind {
	case sop.KindNull, sop.KindBool, sop.KindNumber, sop.KindString:
		b, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("condition values must be scalars")
	}
}
