package router

import (
	"regexp"
	"strings"

	"github.com/X10NLUN1X/xionimus/pkg/config"
)

// SignalSet captures the lexical and structural signals found in a
// request. It is computed fresh per request and never persisted.
type SignalSet struct {
	// Matched maps category -> keywords that matched the text.
	Matched map[Category][]string

	// Scores maps category -> accumulated keyword weight, capped at 1.
	Scores map[Category]float64

	HasCodeBlock    bool
	HasErrorPattern bool
}

// Extractor detects signals in request text. It is pure and safe for
// concurrent use.
type Extractor struct {
	keywords map[Category][]config.Keyword
}

// Error/traceback shapes: an exception-like identifier followed by a
// colon and message, or a recognized traceback marker line.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][A-Za-z]*(?:Error|Exception|Warning|Fault)\s*:`),
	regexp.MustCompile(`(?m)^Traceback \(most recent call last\)`),
	regexp.MustCompile(`(?m)^panic:`),
	regexp.MustCompile(`(?m)^\s+at\s+\S+\(.*:\d+`),
	regexp.MustCompile(`(?m)^Caused by:`),
	regexp.MustCompile(`(?m)^\s*File "[^"]+", line \d+`),
	regexp.MustCompile(`goroutine \d+ \[`),
	regexp.MustCompile(`Segmentation fault`),
}

// NewExtractor builds an extractor from the configured keyword sets.
// Unknown category names in the config are ignored.
func NewExtractor(cfg *config.RoutingConfig) *Extractor {
	keywords := make(map[Category][]config.Keyword)
	if cfg != nil {
		for name, list := range cfg.Categories {
			category := Category(name)
			if !category.Valid() {
				continue
			}
			lowered := make([]config.Keyword, len(list))
			for i, kw := range list {
				lowered[i] = config.Keyword{Text: strings.ToLower(kw.Text), Weight: kw.Weight}
			}
			keywords[category] = lowered
		}
	}
	return &Extractor{keywords: keywords}
}

// Extract computes the signal set for a message. It never fails: empty
// or non-UTF8 input yields an all-zero signal set.
func (e *Extractor) Extract(text string) SignalSet {
	signals := SignalSet{
		Matched: make(map[Category][]string),
		Scores:  make(map[Category]float64),
	}
	if text == "" {
		return signals
	}
	text = strings.ToValidUTF8(text, "")
	lowered := strings.ToLower(text)

	for category, keywords := range e.keywords {
		var score float64
		for _, kw := range keywords {
			if strings.Contains(lowered, kw.Text) {
				signals.Matched[category] = append(signals.Matched[category], kw.Text)
				score += kw.Weight
			}
		}
		if score > 1 {
			score = 1
		}
		if score > 0 {
			signals.Scores[category] = score
		}
	}

	signals.HasCodeBlock = hasCodeBlock(text)
	signals.HasErrorPattern = hasErrorPattern(text)
	return signals
}

// hasCodeBlock reports whether the text contains a fenced block with at
// least one non-empty line inside.
func hasCodeBlock(text string) bool {
	for _, fence := range []string{"```", "~~~"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		rest := text[start+len(fence):]
		end := strings.Index(rest, fence)
		if end < 0 {
			continue
		}
		body := rest[:end]
		// Drop the info string on the opening fence line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = ""
		}
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) != "" {
				return true
			}
		}
	}
	return false
}

func hasErrorPattern(text string) bool {
	for _, pattern := range errorPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
