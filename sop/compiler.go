package sop

import (
	"strings"
	"time"
)

// CompileRule renders one rule as an ordered list of script lines:
// comment header, TRIGGER, optional WHEN block, THEN block, optional ELSE
// block, END, trailing blank separator. Disabled rules are filtered by the
// document compiler before reaching this point; there is no enabled branch
// here.
func CompileRule(r Rule) []string {
	lines := []string{"# Rule: " + r.Name}
	if r.Description != "" {
		lines = append(lines, "# "+r.Description)
	}
	lines = append(lines, "")

	lines = append(lines, "TRIGGER "+r.Trigger.Type)

	// Conditions are conjunctive; an empty list means the trigger fires
	// unconditionally and no WHEN block is emitted at all.
	if len(r.Conditions) > 0 {
		lines = append(lines, "WHEN")
		for i, c := range r.Conditions {
			if i == 0 {
				lines = append(lines, "  "+CompileCondition(c))
			} else {
				lines = append(lines, "  AND "+CompileCondition(c))
			}
		}
	}

	lines = append(lines, "THEN")
	if len(r.ThenActions) == 0 {
		// Keeps the block syntactically non-empty for inert rules.
		lines = append(lines, actionIndent+"# No actions defined")
	} else {
		for _, a := range r.ThenActions {
			lines = append(lines, CompileAction(a))
		}
	}

	if len(r.ElseActions) > 0 {
		lines = append(lines, "ELSE")
		for _, a := range r.ElseActions {
			lines = append(lines, CompileAction(a))
		}
	}

	lines = append(lines, "END", "")
	return lines
}

// DocumentCompiler assembles the full script document for a SOP. It is a
// pure function of the SOP snapshot; the only ambient input is the clock
// used for the generation header, which is injectable for deterministic
// output.
type DocumentCompiler struct {
	// Now supplies the generation timestamp. Nil means time.Now.
	Now func() time.Time
}

// NewDocumentCompiler returns a document compiler using the real clock.
func NewDocumentCompiler() *DocumentCompiler {
	return &DocumentCompiler{}
}

// Compile emits the header comments followed by every enabled rule's block,
// in the SOP's given order, joined with newlines. It performs no semantic
// validation; inert or invalid rules still compile.
func (d *DocumentCompiler) Compile(s SOP) string {
	var lines []string

	if s.Name != "" {
		lines = append(lines, "# SOP: "+s.Name)
	}
	if s.Version != "" {
		lines = append(lines, "# Version: "+s.Version)
	}
	if len(lines) > 0 {
		lines = append(lines, "# Generated: "+d.now().Format(time.RFC3339), "")
	}

	for _, r := range s.Rules {
		if !r.Enabled {
			continue
		}
		lines = append(lines, CompileRule(r)...)
	}

	return strings.Join(lines, "\n")
}

func (d *DocumentCompiler) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
