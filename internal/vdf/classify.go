package vdf

import "strings"

// LineKind is the structural role of one line of VDF text.
type LineKind uint8

const (
	// Ignorable lines carry no structure (blank lines, stray text).
	Ignorable LineKind = iota
	// ObjectKey is a line holding exactly one quoted token: the key of an
	// object whose brace follows on the next structural line.
	ObjectKey
	// LeafPair is a line holding exactly two quoted tokens.
	LeafPair
	// OpenBrace is a line with a "{" and no quoted tokens.
	OpenBrace
	// CloseBrace is a line with a "}" and no quoted tokens.
	CloseBrace
)

func (k LineKind) String() string {
	switch k {
	case Ignorable:
		return "ignorable"
	case ObjectKey:
		return "object-key"
	case LeafPair:
		return "leaf-pair"
	case OpenBrace:
		return "open-brace"
	case CloseBrace:
		return "close-brace"
	default:
		return "unknown"
	}
}

// Line is a classified line. Key is set for ObjectKey and LeafPair, Value
// only for LeafPair. Both are un-escaped; RawKey and RawValue hold the
// same tokens exactly as written between the quotes.
type Line struct {
	Kind     LineKind
	Key      string
	Value    string
	RawKey   string
	RawValue string
}

// token is one quoted run, un-escaped and as written.
type token struct {
	text string
	raw  string
}

// Classify determines the structural role of a single line. It keeps no
// state between calls.
func Classify(s string) Line {
	s = strings.TrimSuffix(s, "\r")

	tokens := quotedTokens(s)
	switch len(tokens) {
	case 2:
		return Line{
			Kind:     LeafPair,
			Key:      tokens[0].text,
			Value:    tokens[1].text,
			RawKey:   tokens[0].raw,
			RawValue: tokens[1].raw,
		}
	case 1:
		return Line{Kind: ObjectKey, Key: tokens[0].text, RawKey: tokens[0].raw}
	case 0:
		if strings.IndexByte(s, '{') >= 0 {
			return Line{Kind: OpenBrace}
		}
		if strings.IndexByte(s, '}') >= 0 {
			return Line{Kind: CloseBrace}
		}
	}
	return Line{Kind: Ignorable}
}

// quotedTokens returns the anchored quoted tokens of s.
//
// Quotes are paired left to right. A run only counts as a token when it
// starts at line start or after a tab, "{" or another run, and ends at
// line end or before a tab, "}" or another run.
func quotedTokens(s string) []token {
	var tokens []token
	prevClose := -1 // index of the closing quote of the previous run

	i := 0
	for i < len(s) {
		if s[i] != '"' {
			i++
			continue
		}
		start := i
		text, end, ok := scanQuoted(s, start)
		if !ok {
			// unterminated run, nothing after it can be a token
			break
		}
		if anchoredBefore(s, start, prevClose) && anchoredAfter(s, end) {
			tokens = append(tokens, token{text: text, raw: s[start+1 : end]})
		}
		prevClose = end
		i = end + 1
	}
	return tokens
}

// scanQuoted reads the quoted run opening at s[start]. It returns the
// un-escaped text and the index of the closing quote.
func scanQuoted(s string, start int) (string, int, bool) {
	var sb strings.Builder
	for i := start + 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
				sb.WriteByte(s[i+1])
				i++
				continue
			}
			sb.WriteByte(c)
		case '"':
			return sb.String(), i, true
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, false
}

func anchoredBefore(s string, start, prevClose int) bool {
	if start == 0 || start-1 == prevClose {
		return true
	}
	switch s[start-1] {
	case '\t', '{':
		return true
	}
	return false
}

func anchoredAfter(s string, end int) bool {
	if end == len(s)-1 {
		return true
	}
	switch s[end+1] {
	case '\t', '}', '"':
		return true
	}
	return false
}
