package sop

import "strconv"

// operatorSymbols maps each operator to its script symbol. matches shares
// the contains symbol; the script grammar has no separate regex operator.
var operatorSymbols = map[Operator]string{
	OpEquals:      "==",
	OpNotEquals:   "!=",
	OpContains:    "~=",
	OpNotContains: "!~=",
	OpGreaterThan: ">",
	OpLessThan:    "<",
	OpMatches:     "~=",
	OpExists:      "??",
	OpNotExists:   "!??",
}

// CompileCondition renders one condition as a script expression. It is
// total: an operator outside the table falls back to "==" rather than
// failing, matching the shipped behavior. Strict callers can reject
// unknown operators up front via Validator.StrictOperators.
func CompileCondition(c Condition) string {
	symbol, ok := operatorSymbols[c.Operator]
	if !ok {
		symbol = "=="
	}

	if c.Operator == OpExists || c.Operator == OpNotExists {
		return c.Field + " " + symbol
	}

	return c.Field + " " + symbol + " " + conditionOperand(c.Value)
}

// conditionOperand renders a condition value. Strings are double-quoted
// unless they parse fully as a number, in which case they are emitted bare:
// "42" compiles to 42, "42x" compiles to "42x". Embedded quotes are emitted
// verbatim, not escaped.
func conditionOperand(v Value) string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		if v.Str != "" {
			if _, err := strconv.ParseFloat(v.Str, 64); err == nil {
				return v.Str
			}
		}
		return `"` + v.Str + `"`
	case KindNull:
		return "null"
	default:
		// Lists and maps are not meaningful comparison operands but the
		// compiler stays total; emit them in their JSON form.
		return encodeScriptValue(v)
	}
}
