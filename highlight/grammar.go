package highlight

// Class labels a token for display styling. The tokenizer is purely
// cosmetic; classes are never written back into the rule model.
type Class string

const (
	ClassKeyword   Class = "keyword"
	ClassOperator  Class = "operator"
	ClassFunction  Class = "function"
	ClassNamespace Class = "namespace"
	ClassField     Class = "field"
	ClassString    Class = "string"
	ClassNumber    Class = "number"
	ClassComment   Class = "comment"
	ClassText      Class = "text"
)

// Token is one (text, class) pair. Concatenating the texts of a line's
// tokens always reproduces the line exactly.
type Token struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// Grammar is the immutable table set a Highlighter is constructed from.
// Passing the tables in rather than reading hidden globals lets grammar
// extensions (new keywords, new namespaces) happen without touching this
// package, and lets tests substitute a minimal grammar.
type Grammar struct {
	// Keywords are block/structure words, matched exactly.
	Keywords []string

	// Operators are matched exactly and also act as token delimiters.
	Operators []string

	// Punctuation splits tokens like operators do but classifies as plain
	// text.
	Punctuation []string

	// Functions are known action names.
	Functions []string

	// Namespaces is the allow-list of dotted-path prefixes that split into
	// namespace + field tokens.
	Namespaces []string
}

// DefaultGrammar returns the stock grammar for emitted scripts.
func DefaultGrammar() Grammar {
	return Grammar{
		Keywords: []string{
			"TRIGGER", "WHEN", "THEN", "ELSE", "END",
			"AND", "OR", "NOT", "IF", "ELIF",
		},
		Operators: []string{
			"==", "!=", ">=", "<=", ">", "<", "~=", "??", "&&", "||",
		},
		Punctuation: []string{"(", ")", ",", ":"},
		Functions: []string{
			"respond", "escalate", "log", "notify", "execute", "wait", "branch",
		},
		Namespaces: []string{
			"message", "user", "conversation", "event", "agent", "mission",
		},
	}
}
