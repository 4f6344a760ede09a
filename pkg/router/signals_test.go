package router

import (
	"testing"

	"github.com/X10NLUN1X/xionimus/pkg/config"
)

func TestExtractMatchesSubstringsCaseInsensitive(t *testing.T) {
	cfg := &config.RoutingConfig{
		Categories: map[string][]config.Keyword{
			"debugging": {
				{Text: "Error", Weight: 0.9},
				{Text: "debug", Weight: 0.9},
			},
		},
	}

	signals := NewExtractor(cfg).Extract("I hit a NameError: in production")
	if signals.Scores[CategoryDebugging] != 0.9 {
		t.Fatalf("expected score 0.9, got %.2f", signals.Scores[CategoryDebugging])
	}
	if len(signals.Matched[CategoryDebugging]) != 1 || signals.Matched[CategoryDebugging][0] != "error" {
		t.Fatalf("unexpected matches: %v", signals.Matched[CategoryDebugging])
	}
}

func TestExtractCapsWeightSum(t *testing.T) {
	cfg := &config.RoutingConfig{
		Categories: map[string][]config.Keyword{
			"debugging": {
				{Text: "error", Weight: 0.9},
				{Text: "crash", Weight: 0.8},
				{Text: "bug", Weight: 0.7},
			},
		},
	}

	signals := NewExtractor(cfg).Extract("error crash bug everywhere")
	if signals.Scores[CategoryDebugging] != 1.0 {
		t.Fatalf("expected capped score 1.0, got %.2f", signals.Scores[CategoryDebugging])
	}
}

func TestExtractEmptyAndInvalidInput(t *testing.T) {
	extractor := NewExtractor(config.DefaultRoutingConfig())

	signals := extractor.Extract("")
	if len(signals.Scores) != 0 || signals.HasCodeBlock || signals.HasErrorPattern {
		t.Fatalf("expected all-zero signals for empty input: %+v", signals)
	}

	// Invalid UTF-8 bytes must not panic or match.
	signals = extractor.Extract(string([]byte{0xff, 0xfe, 'h', 'i'}))
	if signals.HasCodeBlock || signals.HasErrorPattern {
		t.Fatalf("expected no structural signals for garbage input")
	}
}

func TestExtractIgnoresUnknownCategories(t *testing.T) {
	cfg := &config.RoutingConfig{
		Categories: map[string][]config.Keyword{
			"not_a_category": {{Text: "anything", Weight: 1.0}},
		},
	}

	signals := NewExtractor(cfg).Extract("anything at all")
	if len(signals.Scores) != 0 {
		t.Fatalf("expected unknown category to be dropped, got %+v", signals.Scores)
	}
}

func TestHasCodeBlock(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"backtick fence", "look at this:\n```go\nfunc main() {}\n```", true},
		{"tilde fence", "~~~\nx = 1\n~~~", true},
		{"empty fence", "```\n```", false},
		{"whitespace only", "```go\n   \n```", false},
		{"unclosed fence", "```go\nfunc main() {}", false},
		{"no fence", "just inline `code` here", false},
	}

	for _, tc := range cases {
		if got := hasCodeBlock(tc.text); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestHasErrorPattern(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"python exception", "NameError: name 'x' is not defined", true},
		{"python traceback", "Traceback (most recent call last)\n  File \"app.py\", line 3", true},
		{"go panic", "panic: runtime error: index out of range", true},
		{"goroutine dump", "goroutine 17 [running]:", true},
		{"java caused by", "Caused by: java.lang.NullPointerException", true},
		{"segfault", "Segmentation fault (core dumped)", true},
		{"plain prose", "my program reports the wrong total", false},
		{"word error mid-sentence", "I made an error in my estimate", false},
	}

	for _, tc := range cases {
		if got := hasErrorPattern(tc.text); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
