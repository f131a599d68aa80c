package vdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Parser builds trees from VDF text.
type Parser struct {
	source string
	logger *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithSource names the input in error messages and log records.
func WithSource(name string) ParserOption {
	return func(p *Parser) { p.source = name }
}

// WithLogger sets the logger used for debug output about skipped lines.
func WithLogger(l *slog.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.source != "" {
		p.logger = p.logger.With("source", p.source)
	}
	return p
}

// frame is an object that has seen its opening brace and not yet its
// closing one. Its depth is its index in the stack.
type frame struct {
	key  string
	node *Node
}

// builder holds the state of one Parse call.
type builder struct {
	p       *Parser
	root    *Node
	stack   []frame
	pending *frame // object whose key line has been read, awaiting "{"
	line    int
}

// Parse builds a tree from lines. The returned root is always an object.
func (p *Parser) Parse(lines []string) (*Node, error) {
	b := &builder{p: p, root: NewObject()}
	for i, s := range lines {
		b.line = i + 1
		if err := b.feed(s); err != nil {
			return nil, err
		}
	}
	if err := b.finish(); err != nil {
		return nil, err
	}
	return b.root, nil
}

// Decode reads r to the end and parses it. Lines may end in "\n" or
// "\r\n" and need not fit in any fixed buffer.
func (p *Parser) Decode(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)
	b := &builder{p: p, root: NewObject()}
	for {
		s, err := br.ReadString('\n')
		if len(s) > 0 {
			b.line++
			if ferr := b.feed(strings.TrimSuffix(s, "\n")); ferr != nil {
				return nil, ferr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", b.line+1, err)
		}
	}
	if err := b.finish(); err != nil {
		return nil, err
	}
	return b.root, nil
}

// Parse builds a tree from lines with a default Parser.
func Parse(lines []string) (*Node, error) {
	return NewParser().Parse(lines)
}

// ParseString splits s on line breaks and parses it.
func ParseString(s string) (*Node, error) {
	return NewParser().Parse(SplitLines(s))
}

// Decode parses everything read from r with a default Parser.
func Decode(r io.Reader) (*Node, error) {
	return NewParser().Decode(r)
}

// SplitLines splits text into lines, dropping "\r" before each "\n". A
// final line break does not produce an empty trailing line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func (b *builder) top() *Node {
	if len(b.stack) == 0 {
		return b.root
	}
	return b.stack[len(b.stack)-1].node
}

func (b *builder) path() []string {
	path := make([]string, len(b.stack))
	for i, f := range b.stack {
		path[i] = f.key
	}
	return path
}

func (b *builder) feed(s string) error {
	l := Classify(s)

	switch l.Kind {
	case LeafPair:
		return b.add(l.Key, l.RawKey, &Node{kind: LeafKind, value: l.Value, raw: l.RawValue})

	case ObjectKey:
		child := NewObject()
		if err := b.add(l.Key, l.RawKey, child); err != nil {
			return err
		}
		b.pending = &frame{key: l.Key, node: child}
		return nil

	case OpenBrace:
		if b.pending == nil {
			return b.malformed(`"{" without a preceding key line`)
		}
		b.stack = append(b.stack, *b.pending)
		b.pending = nil
		return nil

	case CloseBrace:
		if len(b.stack) == 0 {
			return b.malformed(`unbalanced "}"`)
		}
		if b.pending != nil {
			return b.malformed(fmt.Sprintf("key %q is not followed by \"{\"", b.pending.key))
		}
		b.stack = b.stack[:len(b.stack)-1]
		return nil

	default:
		if strings.TrimSpace(s) != "" {
			b.p.logger.Debug("skipping unrecognised line", "line", b.line, "text", s)
		}
		return nil
	}
}

// add inserts key into the current object. A key line that is still
// waiting for its brace when another entry arrives is malformed.
func (b *builder) add(key, raw string, n *Node) error {
	if b.pending != nil {
		return b.malformed(fmt.Sprintf("key %q is not followed by \"{\"", b.pending.key))
	}
	if err := b.top().add(key, raw, n); err != nil {
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			dup.Source = b.p.source
			dup.Line = b.line
			dup.Path = b.path()
		}
		return err
	}
	return nil
}

func (b *builder) finish() error {
	if b.pending != nil {
		b.line = 0
		return b.malformed(fmt.Sprintf("key %q is not followed by \"{\"", b.pending.key))
	}
	if n := len(b.stack); n > 0 {
		b.line = 0
		return b.malformed(fmt.Sprintf("%d object(s) not closed at end of input (innermost %q)", n, b.stack[n-1].key))
	}
	return nil
}

func (b *builder) malformed(reason string) error {
	return &MalformedDocumentError{Source: b.p.source, Line: b.line, Reason: reason}
}
