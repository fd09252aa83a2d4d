package sop

import "time"

// SOP is a named, versioned set of automation rules. It is the unit of
// storage and the input to document compilation.
type SOP struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	Rules     []Rule    `json:"rules"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Rule is one trigger + conditions + actions unit. Conditions are
// conjunctive: every listed condition must hold for the then-branch.
type Rule struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Trigger     Trigger     `json:"trigger"`
	Conditions  []Condition `json:"conditions,omitempty"`
	ThenActions []Action    `json:"thenActions"`
	ElseActions []Action    `json:"elseActions,omitempty"`
	Enabled     bool        `json:"enabled"`
	Order       int         `json:"order"`
}

// Trigger names the event that starts a rule. The compiler only emits the
// type tag; the configuration is opaque and passed through unread.
type Trigger struct {
	Type   string `json:"type"`
	Config Config `json:"config,omitempty"`
}

// Operator is the closed set of condition operators.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpMatches     Operator = "matches"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
)

// Condition tests one field of the triggering event. Field is a dotted
// namespace.field path. Value is ignored for exists/not_exists.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value,omitempty"`
}

// Action is a function-like statement: a type tag plus an ordered
// configuration map of arbitrary JSON-like values.
type Action struct {
	Type   string `json:"type"`
	Config Config `json:"config,omitempty"`
}
