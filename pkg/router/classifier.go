package router

import (
	"fmt"
	"sort"

	"github.com/X10NLUN1X/xionimus/pkg/config"
)

// Blend weights. Categories that only make sense with code present
// split evenly between keywords and code presence; for debugging the
// error pattern dominates, so a bare stack trace routes there even
// without any "debug" wording.
const (
	codeKeywordWeight  = 0.5
	codeSignalWeight   = 0.5
	debugKeywordWeight = 0.4
	debugErrorWeight   = 0.6
)

// CategoryScore is one category's scored classification candidate.
type CategoryScore struct {
	Category     Category `json:"category"`
	KeywordScore float64  `json:"keyword_score"`
	Final        float64  `json:"final"`
	Matched      []string `json:"matched,omitempty"`
}

// Result is an ordered classification outcome. Scores are sorted by
// final score descending; the head is the selected category unless the
// caller overrides it.
type Result struct {
	Category   Category        `json:"category"`
	Confidence float64         `json:"confidence"`
	Scores     []CategoryScore `json:"scores,omitempty"`
	Reasons    []string        `json:"reasons,omitempty"`
}

// Classifier turns a signal set into a ranked category list using
// deterministic scoring rules.
type Classifier struct {
	minConfidence float64
}

// NewClassifier creates a classifier with the configured confidence floor.
func NewClassifier(cfg *config.RoutingConfig) *Classifier {
	min := 0.4
	if cfg != nil && cfg.MinConfidence > 0 {
		min = cfg.MinConfidence
	}
	return &Classifier{minConfidence: min}
}

// Classify combines signals into a ranked (category, confidence) list.
// It is deterministic: identical signal sets always produce identical
// results.
func (c *Classifier) Classify(signals SignalSet) Result {
	scores := make([]CategoryScore, 0, len(AllCategories))
	for _, category := range AllCategories {
		keywordScore := signals.Scores[category]
		final := keywordScore
		switch {
		case category == CategoryDebugging:
			errSignal := 0.0
			if signals.HasErrorPattern {
				errSignal = 1.0
			}
			final = keywordScore*debugKeywordWeight + errSignal*debugErrorWeight
		case codeDependent[category]:
			codeSignal := 0.0
			if signals.HasCodeBlock {
				codeSignal = 1.0
			}
			final = keywordScore*codeKeywordWeight + codeSignal*codeSignalWeight
		}
		scores = append(scores, CategoryScore{
			Category:     category,
			KeywordScore: keywordScore,
			Final:        final,
			Matched:      signals.Matched[category],
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Final == scores[j].Final {
			return scores[i].Category.Rank() > scores[j].Category.Rank()
		}
		return scores[i].Final > scores[j].Final
	})

	top := scores[0]
	if top.Final < c.minConfidence {
		return Result{
			Category:   CategoryGeneralChat,
			Confidence: 0,
			Scores:     scores,
			Reasons:    []string{fmt.Sprintf("no category cleared %.2f; using general chat", c.minConfidence)},
		}
	}

	return Result{
		Category:   top.Category,
		Confidence: top.Final,
		Scores:     scores,
		Reasons:    []string{fmt.Sprintf("top=%s final=%.2f keywords=%v", top.Category, top.Final, top.Matched)},
	}
}
