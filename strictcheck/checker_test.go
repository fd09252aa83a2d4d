package strictcheck

import (
	"strings"
	"testing"

	"github.com/liamcoop/sopscript/sop"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	c, err := NewChecker([]string{"message", "user", "conversation"})
	if err != nil {
		t.Fatalf("NewChecker() failed: %v", err)
	}
	return c
}

func TestCheckConditionAcceptsKnownOperators(t *testing.T) {
	c := newTestChecker(t)

	conds := []sop.Condition{
		{Field: "user.tier", Operator: sop.OpEquals, Value: sop.Str("gold")},
		{Field: "user.tier", Operator: sop.OpNotEquals, Value: sop.Str("free")},
		{Field: "message.content", Operator: sop.OpContains, Value: sop.Str("refund")},
		{Field: "message.content", Operator: sop.OpNotContains, Value: sop.Str("spam")},
		{Field: "conversation.turns", Operator: sop.OpGreaterThan, Value: sop.Num(3)},
		{Field: "conversation.turns", Operator: sop.OpLessThan, Value: sop.Num(10)},
		{Field: "message.content", Operator: sop.OpMatches, Value: sop.Str("^ORDER-[0-9]+$")},
		{Field: "user.tag", Operator: sop.OpExists},
		{Field: "user.tag", Operator: sop.OpNotExists},
	}

	for _, cond := range conds {
		if err := c.CheckCondition(cond); err != nil {
			t.Errorf("CheckCondition(%s %s) failed: %v", cond.Field, cond.Operator, err)
		}
	}
}

func TestCheckConditionRejectsUnknownOperator(t *testing.T) {
	c := newTestChecker(t)

	err := c.CheckCondition(sop.Condition{
		Field:    "user.tier",
		Operator: sop.Operator("approximately"),
		Value:    sop.Str("gold"),
	})
	if err == nil {
		t.Fatal("strict checker should reject unknown operators")
	}
	if !strings.Contains(err.Error(), "approximately") {
		t.Errorf("error should name the operator, got %v", err)
	}
}

func TestCheckConditionRejectsUndeclaredNamespace(t *testing.T) {
	c := newTestChecker(t)

	err := c.CheckCondition(sop.Condition{
		Field:    "order.total",
		Operator: sop.OpGreaterThan,
		Value:    sop.Num(100),
	})
	if err == nil {
		t.Fatal("field path outside the declared namespaces should be rejected")
	}
	if !strings.Contains(err.Error(), "order.total") {
		t.Errorf("error should include the path, got %v", err)
	}
}

func TestCheckConditionRejectsBadFieldPath(t *testing.T) {
	c := newTestChecker(t)

	bad := []string{
		"",
		"user..tier",
		"user.1tier",
		"user.if",
		"user.tier!",
	}

	for _, path := range bad {
		err := c.CheckCondition(sop.Condition{
			Field:    path,
			Operator: sop.OpExists,
		})
		if err == nil {
			t.Errorf("field path %q should be rejected", path)
		}
	}
}

func TestCheckConditionRejectsCollectionOperands(t *testing.T) {
	c := newTestChecker(t)

	err := c.CheckCondition(sop.Condition{
		Field:    "user.tier",
		Operator: sop.OpEquals,
		Value:    sop.ListOf(sop.Str("a"), sop.Str("b")),
	})
	if err == nil {
		t.Error("list operands should be rejected in strict mode")
	}
}

func TestCheckCollectsDiagnosticsInRuleOrder(t *testing.T) {
	c := newTestChecker(t)

	s := sop.SOP{
		Name: "X",
		Rules: []sop.Rule{
			{
				Name: "First",
				Conditions: []sop.Condition{
					{Field: "order.total", Operator: sop.OpGreaterThan, Value: sop.Num(1)},
				},
			},
			{
				Name: "Second",
				Conditions: []sop.Condition{
					{Field: "user.tier", Operator: sop.OpEquals, Value: sop.Str("gold")}, // fine
					{Field: "user.tier", Operator: sop.Operator("nope"), Value: sop.Str("gold")},
				},
			},
		},
	}

	diags := c.Check(s)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	if !strings.Contains(diags[0], "Rule 1") {
		t.Errorf("first diagnostic should reference rule 1, got %q", diags[0])
	}
	if !strings.Contains(diags[1], "Rule 2, condition 2") {
		t.Errorf("second diagnostic should reference rule 2 condition 2, got %q", diags[1])
	}
}

func TestNewCheckerRejectsReservedNamespace(t *testing.T) {
	if _, err := NewChecker([]string{"true"}); err == nil {
		t.Error("reserved keyword should not be usable as a namespace")
	}
}
