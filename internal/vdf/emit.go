package vdf

import (
	"io"
	"strings"
)

// Serialize renders an object as VDF text: one tab of indentation per
// depth level, leaves as `"key"<tab><tab>"value"`, and objects as a key
// line followed by braces on their own lines. Every line ends in "\n"
// except the closing brace that ends the document. Keys and values read
// from a document are written back exactly as they were spelled; only
// text set in code is escaped.
func Serialize(root *Node) string {
	e := &emitter{}
	e.emitObject(root, 0)
	out := e.sb.String()
	if n := len(root.entries); n > 0 && root.entries[n-1].Node.IsObject() {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

// Lines renders root like Serialize and splits the result into lines.
func Lines(root *Node) []string {
	return SplitLines(Serialize(root))
}

// Encode writes the serialized form of root to w.
func Encode(w io.Writer, root *Node) error {
	_, err := io.WriteString(w, Serialize(root))
	return err
}

type emitter struct {
	sb strings.Builder
}

func (e *emitter) emitObject(n *Node, depth int) {
	for _, entry := range n.entries {
		if entry.Node.IsLeaf() {
			e.indent(depth)
			e.token(entry.Key, entry.raw)
			e.sb.WriteString("\t\t")
			e.token(entry.Node.value, entry.Node.raw)
			e.sb.WriteByte('\n')
			continue
		}

		e.indent(depth)
		e.token(entry.Key, entry.raw)
		e.sb.WriteByte('\n')
		e.indent(depth)
		e.sb.WriteString("{\n")
		e.emitObject(entry.Node, depth+1)
		e.indent(depth)
		e.sb.WriteString("}\n")
	}
}

func (e *emitter) indent(depth int) {
	for i := 0; i < depth; i++ {
		e.sb.WriteByte('\t')
	}
}

// token writes raw between quotes when it is known, and s escaped
// otherwise.
func (e *emitter) token(s, raw string) {
	if raw == "" {
		e.quoted(s)
		return
	}
	e.sb.WriteByte('"')
	e.sb.WriteString(raw)
	e.sb.WriteByte('"')
}

// quoted writes s between double quotes, escaping backslashes and quotes.
func (e *emitter) quoted(s string) {
	e.sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			e.sb.WriteByte('\\')
			e.sb.WriteByte(c)
		default:
			e.sb.WriteByte(c)
		}
	}
	e.sb.WriteByte('"')
}
