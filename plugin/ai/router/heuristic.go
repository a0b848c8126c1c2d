package router

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Signal weights.
const (
	weightShortQuery      = -0.3
	weightMediumQuery     = 0.15
	weightLongQuery       = 0.3
	weightFastPattern     = -0.4
	weightFewKeywords     = 0.25
	weightManyKeywords    = 0.5
	weightComplexPhrase   = 0.35
	weightCode            = 0.4
	weightMultiQuestion   = 0.2
	weightMultiSentence   = 0.15
	weightMathContent     = 0.3
	advancedScoreCutoff   = 0.3
	fastScoreCutoff       = -0.2
	ambiguousConfidence   = 0.5
	maxDecisiveConfidence = 0.95
)

// Character classes matching letters, digits and whitespace in any script.
const (
	wordClass  = `\p{L}\p{N}_`
	spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`
	digitClass = `\p{Nd}`
)

// advancedKeywords are reasoning, math, coding and depth terms.
// Matched as substrings of the lower-cased query.
var advancedKeywords = []string{
	"analyze", "analysis", "evaluate", "compare", "contrast", "explain why",
	"reason", "reasoning", "deduce", "infer", "critique", "assess", "synthesize",
	"hypothesis",
	"calculate", "compute", "solve", "equation", "integral", "derivative",
	"probability", "proof", "theorem", "algorithm", "optimize", "mathematical",
	"formula",
	"implement", "debug", "refactor", "architecture", "design pattern",
	"recursion", "complexity", "function", "class", "async", "database", "sql",
	"api", "deploy",
	"implications", "trade-offs", "tradeoffs", "nuances", "comprehensive",
	"in-depth", "detailed", "step by step", "step-by-step", "walk me through",
}

// fastPatterns recognise greetings and simple lookups. Matched against the trimmed, lower-cased query.
var fastPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:hi|hello|hey|greetings|good (?:morning|afternoon|evening))[` + spaceClass + `!.?]*$`),
	regexp.MustCompile(`^(?:thanks?|thank you|thx)[` + spaceClass + `!.?]*$`),
	regexp.MustCompile(`^what (?:is|are) (?:the )?[` + wordClass + `]+[` + spaceClass + `?]*$`),
	regexp.MustCompile(`^who (?:is|was|are) `),
	regexp.MustCompile(`^when (?:is|was|did) `),
	regexp.MustCompile(`^where (?:is|was|are) `),
	regexp.MustCompile(`^define `),
	regexp.MustCompile(`^(?:what|what's) (?:the )?(?:capital|population|currency|language) of`),
	regexp.MustCompile(`^(?:translate|convert) .{1,50}$`),
}

// complexPhrasePatterns recognise build/write/design requests and comparisons.
var complexPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`write (?:a |an |the )?(?:code|program|script|function|class)`),
	regexp.MustCompile(`how (?:do|does|would|could|can) .{20,}`),
	regexp.MustCompile(`what (?:are the|is the) (?:difference|relationship|impact)`),
	regexp.MustCompile(`(?:pro|con)s? and (?:con|pro)s?`),
	regexp.MustCompile(`build (?:a |an |the )?`),
	regexp.MustCompile(`create (?:a |an |the )?(?:system|application|pipeline|framework)`),
	regexp.MustCompile(`design (?:a |an |the )?`),
}

// codeIndicators recognise source code in the raw query, case-insensitively.
var codeIndicators = []*regexp.Regexp{
	regexp.MustCompile("(?i)```"),
	regexp.MustCompile(`(?i)def [` + wordClass + `]+\(`),
	regexp.MustCompile(`(?i)class [` + wordClass + `]+[:\(]`),
	regexp.MustCompile(`(?i)function [` + wordClass + `]+\(`),
	regexp.MustCompile(`(?i)import [` + wordClass + `]+`),
	regexp.MustCompile(`(?i)(?:SELECT|INSERT|UPDATE|DELETE) .+ (?:FROM|INTO|SET)`),
}

var (
	sentenceSplitter = regexp.MustCompile(`[.!?]+`)
	mathSymbols      = regexp.MustCompile(`[+\-*/=<>^%]|[` + digitClass + `]{2,}`)
)

// HeuristicClassifier scores a query with additive signed weights. It does no I/O.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates a new heuristic classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Name implements Classifier.
func (h *HeuristicClassifier) Name() string {
	return ClassifierHeuristic
}

// Classify implements Classifier. It never returns an error.
func (h *HeuristicClassifier) Classify(_ context.Context, query string) (*ClassificationResult, error) {
	return h.Score(query), nil
}

// Score runs every signal over query and turns the total into a decision.
func (h *HeuristicClassifier) Score(query string) *ClassificationResult {
	lower := strings.ToLower(strings.TrimSpace(query))
	score := 0.0
	var signals []string

	// Query length
	wordCount := len(strings.Fields(query))
	switch {
	case wordCount <= 5:
		score += weightShortQuery
		signals = append(signals, fmt.Sprintf("short_query(%d_words)", wordCount))
	case wordCount >= 50:
		score += weightLongQuery
		signals = append(signals, fmt.Sprintf("long_query(%d_words)", wordCount))
	case wordCount >= 25:
		score += weightMediumQuery
		signals = append(signals, fmt.Sprintf("medium_query(%d_words)", wordCount))
	}

	if matchFirst(fastPatterns, lower) {
		score += weightFastPattern
		signals = append(signals, "fast_pattern")
	}

	hits := 0
	for _, kw := range advancedKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	switch {
	case hits >= 3:
		score += weightManyKeywords
		signals = append(signals, fmt.Sprintf("advanced_keywords(%d_hits)", hits))
	case hits >= 1:
		score += weightFewKeywords
		signals = append(signals, fmt.Sprintf("advanced_keywords(%d_hits)", hits))
	}

	if matchFirst(complexPhrasePatterns, lower) {
		score += weightComplexPhrase
		signals = append(signals, "complex_phrase")
	}

	if matchFirst(codeIndicators, query) {
		score += weightCode
		signals = append(signals, "code_detected")
	}

	if questions := strings.Count(query, "?"); questions >= 3 {
		score += weightMultiQuestion
		signals = append(signals, fmt.Sprintf("multi_question(%d)", questions))
	}

	if sentences := countSentences(query); sentences >= 4 {
		score += weightMultiSentence
		signals = append(signals, fmt.Sprintf("multi_sentence(%d)", sentences))
	}

	if symbols := len(mathSymbols.FindAllStringIndex(query, -1)); symbols >= 3 {
		score += weightMathContent
		signals = append(signals, fmt.Sprintf("math_content(%d_symbols)", symbols))
	}

	complexity, confidence := decide(score)
	return &ClassificationResult{
		Complexity:     complexity,
		Confidence:     confidence,
		Reasoning:      fmt.Sprintf("score=%.2f, signals=[%s]", score, strings.Join(signals, ", ")),
		ClassifierUsed: ClassifierHeuristic,
	}
}

// decide maps a score to a tier. The ambiguous middle band resolves to fast at a fixed confidence.
func decide(score float64) (ComplexityLevel, float64) {
	switch {
	case score >= advancedScoreCutoff:
		return ComplexityAdvanced, decisiveConfidence(score)
	case score <= fastScoreCutoff:
		return ComplexityFast, decisiveConfidence(score)
	default:
		return ComplexityFast, ambiguousConfidence
	}
}

func decisiveConfidence(score float64) float64 {
	confidence := math.Min(maxDecisiveConfidence, 0.6+math.Abs(score)*0.3)
	return math.Round(confidence*1000) / 1000
}

// matchFirst reports whether any pattern matches. Scanning stops at the first match.
func matchFirst(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func countSentences(query string) int {
	count := 0
	for _, part := range sentenceSplitter.Split(query, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}
