// Package diffview prints line diffs between two versions of a file.
package diffview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Options controls Render.
type Options struct {
	FromName string
	ToName   string
	Color    bool
	Context  int // unchanged lines shown around each change
}

type op int

const (
	opEqual op = iota
	opInsert
	opDelete
)

type line struct {
	op   op
	text string
}

// lines computes a line-level diff of before and after.
func lines(before, after string) []line {
	dmp := diffpatch.New()
	a, b, index := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var out []line
	for _, d := range diffs {
		var o op
		switch d.Type {
		case diffpatch.DiffInsert:
			o = opInsert
		case diffpatch.DiffDelete:
			o = opDelete
		default:
			o = opEqual
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			out = append(out, line{op: o, text: strings.TrimSuffix(text, "\n")})
		}
	}
	return out
}

// Render writes a diff of before and after to w and reports whether they
// differ. Nothing is written when they are equal.
func Render(w io.Writer, before, after string, opts Options) (bool, error) {
	if before == after {
		return false, nil
	}

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	for _, c := range []*color.Color{red, green, cyan} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	ls := lines(before, after)
	show := visible(ls, opts.Context)

	var sb strings.Builder
	sb.WriteString(cyan.Sprintf("--- %s", opts.FromName) + "\n")
	sb.WriteString(cyan.Sprintf("+++ %s", opts.ToName) + "\n")

	skipped := false
	for i, l := range ls {
		if !show[i] {
			skipped = true
			continue
		}
		if skipped {
			sb.WriteString(cyan.Sprint("@@ ... @@") + "\n")
			skipped = false
		}
		switch l.op {
		case opInsert:
			sb.WriteString(green.Sprint("+"+l.text) + "\n")
		case opDelete:
			sb.WriteString(red.Sprint("-"+l.text) + "\n")
		default:
			sb.WriteString(" " + l.text + "\n")
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return true, fmt.Errorf("failed to write diff: %w", err)
	}
	return true, nil
}

// visible marks changed lines and up to context unchanged lines on
// either side of them.
func visible(ls []line, context int) []bool {
	show := make([]bool, len(ls))
	for i, l := range ls {
		if l.op == opEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(ls)-1, i+context); j++ {
			show[j] = true
		}
	}
	return show
}

// ColorEnabled resolves a color mode (always, never, auto) for w. In
// auto mode color is used only on a terminal and when NO_COLOR is unset.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
