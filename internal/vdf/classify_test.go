package vdf_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ossyrian/steamaffinity/internal/vdf"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  vdf.Line
	}{
		{
			name:  "object key at line start",
			input: `"UserLocalConfigStore"`,
			want:  vdf.Line{Kind: vdf.ObjectKey, Key: "UserLocalConfigStore"},
		},
		{
			name:  "indented object key",
			input: "\t\t\"apps\"",
			want:  vdf.Line{Kind: vdf.ObjectKey, Key: "apps"},
		},
		{
			name:  "leaf pair",
			input: "\t\t\"LaunchOptions\"\t\t\"-novid\"",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "LaunchOptions", Value: "-novid"},
		},
		{
			name:  "leaf pair with empty value",
			input: "\t\"LaunchOptions\"\t\t\"\"",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "LaunchOptions", Value: ""},
		},
		{
			name:  "adjacent tokens",
			input: `"a""b"`,
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "a", Value: "b"},
		},
		{
			name:  "escaped quote and backslash are resolved",
			input: "\t\"path\"\t\t\"C:\\\\Games\\\\\\\"x\\\"\"",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "path", Value: `C:\Games\"x"`},
		},
		{
			name:  "unknown escape keeps the backslash",
			input: "\t\"k\"\t\t\"a\\nb\"",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "k", Value: `a\nb`},
		},
		{
			name:  "token after open brace",
			input: "{\"k\"",
			want:  vdf.Line{Kind: vdf.ObjectKey, Key: "k"},
		},
		{
			name:  "token before close brace",
			input: "\t\"k\"}",
			want:  vdf.Line{Kind: vdf.ObjectKey, Key: "k"},
		},
		{
			name:  "open brace",
			input: "\t{",
			want:  vdf.Line{Kind: vdf.OpenBrace},
		},
		{
			name:  "close brace",
			input: "\t}",
			want:  vdf.Line{Kind: vdf.CloseBrace},
		},
		{
			name:  "close brace with carriage return",
			input: "}\r",
			want:  vdf.Line{Kind: vdf.CloseBrace},
		},
		{
			name:  "leaf pair with carriage return",
			input: "\"k\"\t\t\"v\"\r",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "k", Value: "v"},
		},
		{
			name:  "brace inside a token is not a brace line",
			input: "\t\"k\"\t\t\"{\"",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "k", Value: "{"},
		},
		{
			name:  "blank line",
			input: "",
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "whitespace only",
			input: "\t\t  ",
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "space separated tokens are not anchored",
			input: `"k" "v"`,
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "space before token is not anchored",
			input: ` "k"`,
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "three tokens",
			input: "\"a\"\t\"b\"\t\"c\"",
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "unterminated token",
			input: "\t\"broken",
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "stray text",
			input: "// comment",
			want:  vdf.Line{Kind: vdf.Ignorable},
		},
		{
			name:  "trailing text after a leaf pair",
			input: "\"k\"\t\t\"v\"\t[$WIN32]",
			want:  vdf.Line{Kind: vdf.LeafPair, Key: "k", Value: "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vdf.Classify(tt.input)
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(vdf.Line{}, "RawKey", "RawValue")); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestClassify_Raw(t *testing.T) {
	tests := []struct {
		input   string
		wantKey string
		wantVal string
	}{
		{input: "\t\"k\"\t\t\"a\\nb\\tc\"", wantKey: "k", wantVal: `a\nb\tc`},
		{input: "\"p\"\t\t\"C:\\\\x\\\"\"", wantKey: "p", wantVal: `C:\\x\"`},
		{input: "\"k\\\"q\"", wantKey: `k\"q`},
	}
	for _, tt := range tests {
		got := vdf.Classify(tt.input)
		if got.RawKey != tt.wantKey || got.RawValue != tt.wantVal {
			t.Errorf("Classify(%q) raw = (%q, %q), want (%q, %q)", tt.input, got.RawKey, got.RawValue, tt.wantKey, tt.wantVal)
		}
	}
}

func TestLineKind_String(t *testing.T) {
	if got := vdf.LeafPair.String(); got != "leaf-pair" {
		t.Errorf("LeafPair.String() = %q", got)
	}
	if got := vdf.LineKind(99).String(); got != "unknown" {
		t.Errorf("LineKind(99).String() = %q", got)
	}
}
