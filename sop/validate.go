package sop

import (
	"fmt"
	"strings"
)

// ValidationResult carries the blocking errors and advisory warnings for
// one rule set. Diagnostics are data, not exceptions: compilation never
// consults them, but callers must not treat compiled output as save-ready
// while Errors is non-empty.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the rule set is acceptable to persist or export.
// Warnings never block.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validator performs the structural pre-flight over a SOP. Messages are
// deterministic and appear in rule order.
type Validator struct {
	// StrictOperators turns condition operators outside the known set into
	// blocking errors. When false the compiler's lenient "==" fallback
	// applies silently.
	StrictOperators bool
}

// Validate inspects the SOP and returns blocking errors and non-blocking
// warnings. It never fails.
func (v Validator) Validate(s SOP) ValidationResult {
	res := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if strings.TrimSpace(s.Name) == "" {
		res.Errors = append(res.Errors, "SOP name is required")
	}
	if len(s.Rules) == 0 {
		res.Errors = append(res.Errors, "At least one rule is required")
	}

	for i, r := range s.Rules {
		if strings.TrimSpace(r.Name) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Rule %d: name is required", i+1))
		}

		if v.StrictOperators {
			for _, c := range r.Conditions {
				if _, ok := operatorSymbols[c.Operator]; !ok {
					res.Errors = append(res.Errors, fmt.Sprintf("Rule %d: unknown operator %q on field %q", i+1, string(c.Operator), c.Field))
				}
			}
		}

		if len(r.ThenActions) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Rule %q has no then actions", r.Name))
		}
	}

	return res
}

// ValidationError wraps a failed pre-flight so store-facing callers can
// surface the individual diagnostics.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return "sop validation failed: " + strings.Join(e.Result.Errors, "; ")
}
