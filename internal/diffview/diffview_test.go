package diffview_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ossyrian/steamaffinity/internal/diffview"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		before      string
		after       string
		context     int
		want        []string
		wantChanged bool
	}{
		{
			name:   "equal",
			before: "a\nb\n",
			after:  "a\nb\n",
		},
		{
			name:        "changed line with context",
			before:      "a\nb\nc\n",
			after:       "a\nB\nc\n",
			context:     1,
			wantChanged: true,
			want:        []string{"--- old", "+++ new", " a", "-b", "+B", " c", ""},
		},
		{
			name:        "distant lines are elided",
			before:      "1\n2\n3\n4\n5\n6\n7\n",
			after:       "1\n2\n3\n4\nfive\n6\n7\n",
			context:     1,
			wantChanged: true,
			want:        []string{"--- old", "+++ new", "@@ ... @@", " 4", "-5", "+five", " 6", ""},
		},
		{
			name:        "appended line",
			before:      "\"k\"\t\t\"v\"\n",
			after:       "\"k\"\t\t\"v\"\n\"n\"\t\t\"w\"\n",
			context:     3,
			wantChanged: true,
			want:        []string{"--- old", "+++ new", " \"k\"\t\t\"v\"", "+\"n\"\t\t\"w\"", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			changed, err := diffview.Render(&buf, tt.before, tt.after, diffview.Options{
				FromName: "old",
				ToName:   "new",
				Context:  tt.context,
			})
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("Render() changed = %v, want %v", changed, tt.wantChanged)
			}
			want := strings.Join(tt.want, "\n")
			if diff := cmp.Diff(want, buf.String()); diff != "" {
				t.Errorf("Render() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_Color(t *testing.T) {
	var buf bytes.Buffer
	if _, err := diffview.Render(&buf, "a\n", "b\n", diffview.Options{Color: true}); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Render() with color has no escape sequences: %q", buf.String())
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if !diffview.ColorEnabled("always", &buf) {
		t.Error("ColorEnabled(always) = false")
	}
	if diffview.ColorEnabled("never", &buf) {
		t.Error("ColorEnabled(never) = true")
	}
	if diffview.ColorEnabled("auto", &buf) {
		t.Error("ColorEnabled(auto) = true for a buffer")
	}
}
