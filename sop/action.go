package sop

import "strings"

// actionIndent is the fixed indentation unit for statements inside a
// THEN/ELSE block.
const actionIndent = "    "

// CompileAction renders one action as an indented script statement of the
// form `type(key: value, ...)`. Configuration keys keep their insertion
// order; an empty configuration emits `type()`.
func CompileAction(a Action) string {
	var sb strings.Builder
	sb.WriteString(actionIndent)
	sb.WriteString(a.Type)
	sb.WriteByte('(')
	for i, f := range a.Config {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Key)
		sb.WriteString(": ")
		sb.WriteString(encodeScriptValue(f.Value))
	}
	sb.WriteByte(')')
	return sb.String()
}

// encodeScriptValue renders a config value in its JSON form: strings
// quoted and escaped, numbers and booleans bare, lists and maps recursive
// with map keys in insertion order.
func encodeScriptValue(v Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		// Unreachable for the closed Kind set; keep the encoder total.
		return "null"
	}
	return string(b)
}
