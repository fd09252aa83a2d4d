// Package highlight re-scans emitted script text into typed tokens for
// display. It is best-effort and total: it never rejects input, it only
// colors it, and the concatenated token texts always equal the input line.
package highlight

import (
	"sort"
	"strconv"
	"strings"
)

// Highlighter tokenizes script lines against one immutable Grammar.
// Safe for concurrent use; it holds no mutable state after construction.
type Highlighter struct {
	keywords   map[string]struct{}
	operators  map[string]struct{}
	functions  map[string]struct{}
	namespaces map[string]struct{}
	delims     []string
}

// New builds a Highlighter from the given grammar.
func New(g Grammar) *Highlighter {
	h := &Highlighter{
		keywords:   toSet(g.Keywords),
		operators:  toSet(g.Operators),
		functions:  toSet(g.Functions),
		namespaces: toSet(g.Namespaces),
	}

	// Operators and punctuation both delimit tokens. Longest first so
	// ">=" wins over ">".
	h.delims = append(h.delims, g.Operators...)
	h.delims = append(h.delims, g.Punctuation...)
	sort.SliceStable(h.delims, func(i, j int) bool {
		return len(h.delims[i]) > len(h.delims[j])
	})

	return h
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// HighlightScript tokenizes a whole script, one token list per line.
func (h *Highlighter) HighlightScript(text string) [][]Token {
	lines := strings.Split(text, "\n")
	out := make([][]Token, len(lines))
	for i, line := range lines {
		out[i] = h.Highlight(line)
	}
	return out
}

// Highlight tokenizes one line. A line whose trimmed text starts with "#"
// is a single comment token; anything else is split on whitespace,
// operators, and punctuation, with the delimiters kept as tokens.
func (h *Highlighter) Highlight(line string) []Token {
	tokens := []Token{}
	if line == "" {
		return tokens
	}
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return append(tokens, Token{Text: line, Class: ClassComment})
	}

	start := 0
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, h.classify(line[start:end])...)
		}
	}

	i := 0
	for i < len(line) {
		c := line[i]

		if c == ' ' || c == '\t' {
			flush(i)
			j := i
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			tokens = append(tokens, Token{Text: line[i:j], Class: ClassText})
			i = j
			start = i
			continue
		}

		if d := h.delimAt(line, i); d != "" {
			flush(i)
			class := ClassText
			if _, ok := h.operators[d]; ok {
				class = ClassOperator
			}
			tokens = append(tokens, Token{Text: d, Class: class})
			i += len(d)
			start = i
			continue
		}

		i++
	}
	flush(len(line))

	return tokens
}

func (h *Highlighter) delimAt(s string, i int) string {
	for _, d := range h.delims {
		if strings.HasPrefix(s[i:], d) {
			return d
		}
	}
	return ""
}

// classify assigns classes in priority order: keyword, operator, function,
// namespace.field (split into two tokens), quoted string, number, plain.
func (h *Highlighter) classify(word string) []Token {
	if _, ok := h.keywords[word]; ok {
		return []Token{{Text: word, Class: ClassKeyword}}
	}
	if _, ok := h.operators[word]; ok {
		return []Token{{Text: word, Class: ClassOperator}}
	}
	if _, ok := h.functions[word]; ok {
		return []Token{{Text: word, Class: ClassFunction}}
	}

	if dot := strings.Index(word, "."); dot > 0 && dot < len(word)-1 {
		if _, ok := h.namespaces[word[:dot]]; ok {
			return []Token{
				{Text: word[:dot], Class: ClassNamespace},
				{Text: word[dot:], Class: ClassField},
			}
		}
	}

	if len(word) >= 2 && word[0] == '"' && word[len(word)-1] == '"' {
		return []Token{{Text: word, Class: ClassString}}
	}

	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return []Token{{Text: word, Class: ClassNumber}}
	}

	return []Token{{Text: word, Class: ClassText}}
}
