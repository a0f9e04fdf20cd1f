package router

import (
	"regexp"
	"strings"
)

// TokenKind classifies a pattern segment.
type TokenKind int

const (
	// TokenLiteral is a static segment matched verbatim.
	TokenLiteral TokenKind = iota

	// TokenParam is a named parameter matching exactly one segment (:id).
	TokenParam

	// TokenCatchAll captures all remaining segments as one value (*slug).
	TokenCatchAll
)

// CatchAllName is the parameter name assigned to an unnamed catch-all.
const CatchAllName = "splat"

// Token is one segment of a tokenized URL pattern.
type Token struct {
	Kind TokenKind

	// Value is the literal text for TokenLiteral, or the parameter name for
	// TokenParam and TokenCatchAll (empty if the catch-all is unnamed).
	Value string
}

// Tokenize splits a URL pattern into a typed token sequence. Segments
// starting with ":" are parameters, segments starting with "*" are
// catch-alls, everything else is a literal. The root pattern "/" yields an
// empty sequence.
func Tokenize(pattern string) []Token {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}

	segments := strings.Split(trimmed, "/")
	tokens := make([]Token, 0, len(segments))
	for _, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "*"):
			tokens = append(tokens, Token{Kind: TokenCatchAll, Value: seg[1:]})
		case strings.HasPrefix(seg, ":"):
			tokens = append(tokens, Token{Kind: TokenParam, Value: seg[1:]})
		default:
			tokens = append(tokens, Token{Kind: TokenLiteral, Value: seg})
		}
	}
	return tokens
}

// Pattern is a compiled URL pattern. The match regex and the parameter-name
// list are derived from the same token sequence in a single pass, so the Nth
// capture group always corresponds to the Nth name. Compilation is
// deterministic and side-effect free; compiling the same pattern twice
// yields equivalent results.
type Pattern struct {
	raw      string
	tokens   []Token
	re       *regexp.Regexp
	names    []string
	catchAll bool
}

// CompilePattern tokenizes and compiles a URL pattern. A catch-all token
// without a name is assigned the name "splat".
func CompilePattern(pattern string) *Pattern {
	tokens := Tokenize(pattern)

	var b strings.Builder
	b.WriteString("^")

	var names []string
	catchAll := false

	if len(tokens) == 0 {
		b.WriteString("/")
	}
	for _, tok := range tokens {
		b.WriteString("/")
		switch tok.Kind {
		case TokenLiteral:
			b.WriteString(regexp.QuoteMeta(tok.Value))
		case TokenParam:
			b.WriteString("([^/]+)")
			names = append(names, tok.Value)
		case TokenCatchAll:
			b.WriteString("(.+)")
			name := tok.Value
			if name == "" {
				name = CatchAllName
			}
			names = append(names, name)
			catchAll = true
		}
	}
	if len(tokens) > 0 {
		b.WriteString("/?")
	}
	b.WriteString("$")

	return &Pattern{
		raw:      pattern,
		tokens:   tokens,
		re:       regexp.MustCompile(b.String()),
		names:    names,
		catchAll: catchAll,
	}
}

// Match tests a path (without query string) against the pattern. On success
// it returns the extracted parameter values keyed by name.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(map[string]string, len(p.names))
	for i, name := range p.names {
		params[name] = m[i+1]
	}
	return params, true
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Names returns the parameter names in capture-group order.
func (p *Pattern) Names() []string {
	return append([]string(nil), p.names...)
}

// Tokens returns the token sequence the pattern was compiled from.
func (p *Pattern) Tokens() []Token {
	return append([]Token(nil), p.tokens...)
}

// HasParams reports whether the pattern extracts any parameters.
func (p *Pattern) HasParams() bool { return len(p.names) > 0 }

// IsCatchAll reports whether the pattern ends in a catch-all segment.
func (p *Pattern) IsCatchAll() bool { return p.catchAll }
