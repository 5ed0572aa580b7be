package analysis

import (
	"regexp"
	"sort"
	"strings"
)

var (
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	nonWordRe    = regexp.MustCompile(`[^\w\s.,!?-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	domainRe     = regexp.MustCompile(`https?://([^/]+)`)
	numberRe     = regexp.MustCompile(`(?:\$\s?)?\d+(?:[.,]\d+)*\s?(?:%|percent|billion|million|thousand)?`)
)

// stopWords are filtered out before keyword counting.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but in on at to for of with by from as is was are were been " +
			"be have has had do does did will would could should may might must shall can need " +
			"it its this that these those i you he she we they what which who when where why " +
			"how all each every both few more most other some such no nor not only own same so " +
			"than too very just also now here there") {
		stopWords[w] = struct{}{}
	}
}

// positiveWords and negativeWords are the sentiment lexicons. Membership is
// checked against cleaned, lowercased tokens.
var positiveWords = wordSet(
	"growth increase profit gain positive strong surge rise boom success successful " +
		"opportunity opportunities improve improved improving exceed exceeded outperform " +
		"breakthrough innovation leading best record optimistic confident promising advance benefit")

var negativeWords = wordSet(
	"decline decrease loss drop negative weak fall crash failure failed risk risks concern " +
		"concerns worried worry miss missed underperform worst pessimistic uncertain warning " +
		"layoff layoffs cut cuts lawsuit investigation debt threat obstacle setback")

func wordSet(words string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// Keyword is one extracted term with its occurrence count.
type Keyword struct {
	Word  string
	Count int
}

// Sentiment labels the overall tone of a text.
type Sentiment string

const (
	// SentimentPositive indicates predominantly positive indicators.
	SentimentPositive Sentiment = "positive"
	// SentimentNegative indicates predominantly negative indicators.
	SentimentNegative Sentiment = "negative"
	// SentimentNeutral indicates weak or absent indicators.
	SentimentNeutral Sentiment = "neutral"
	// SentimentMixed indicates strong indicators in both directions.
	SentimentMixed Sentiment = "mixed"
)

// TextAnalyzer provides deterministic text heuristics. The zero value is
// ready to use; it carries no state.
type TextAnalyzer struct{}

// NewTextAnalyzer creates a TextAnalyzer.
func NewTextAnalyzer() *TextAnalyzer { return &TextAnalyzer{} }

// CleanText lowercases text and strips URLs, email addresses and special
// characters, normalizing whitespace.
func (a *TextAnalyzer) CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractKeywords returns the topN most frequent non-stop-word terms of at
// least minLen characters, ordered by descending count with ties broken
// lexicographically for determinism.
func (a *TextAnalyzer) ExtractKeywords(text string, topN, minLen int) []Keyword {
	counts := map[string]int{}
	for _, word := range strings.Fields(a.CleanText(text)) {
		word = strings.Trim(word, ".,!?-")
		if len(word) < minLen || !isAlpha(word) {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		counts[word]++
	}

	keywords := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		keywords = append(keywords, Keyword{Word: w, Count: c})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})
	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	return keywords
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

// SentimentScore computes a lexicon score in [-1, 1] and its label. Bands
// are non-overlapping: above 0.3 positive, below -0.3 negative, otherwise
// neutral; a text with at least three hits in each lexicon is mixed
// regardless of the balance.
func (a *TextAnalyzer) SentimentScore(text string) (float64, Sentiment) {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(a.CleanText(text)) {
		words[strings.Trim(w, ".,!?-")] = struct{}{}
	}

	var positive, negative int
	for w := range words {
		if _, ok := positiveWords[w]; ok {
			positive++
		}
		if _, ok := negativeWords[w]; ok {
			negative++
		}
	}

	if positive >= 3 && negative >= 3 {
		total := positive + negative
		return round3(float64(positive-negative) / float64(total)), SentimentMixed
	}

	total := positive + negative
	if total == 0 {
		return 0, SentimentNeutral
	}
	score := round3(float64(positive-negative) / float64(total))
	switch {
	case score > 0.3:
		return score, SentimentPositive
	case score < -0.3:
		return score, SentimentNegative
	default:
		return score, SentimentNeutral
	}
}

func round3(f float64) float64 {
	if f >= 0 {
		return float64(int(f*1000+0.5)) / 1000
	}
	return float64(int(f*1000-0.5)) / 1000
}

// IdentifyTopics returns up to maxTopics keywords that occur at least twice.
func (a *TextAnalyzer) IdentifyTopics(text string, maxTopics int) []string {
	var topics []string
	for _, kw := range a.ExtractKeywords(text, 20, 3) {
		if kw.Count < 2 {
			continue
		}
		topics = append(topics, kw.Word)
		if len(topics) >= maxTopics {
			break
		}
	}
	return topics
}

// ExtractNumbers returns up to limit numeric figures found in text, such as
// percentages, dollar amounts and magnitude qualified counts. Bare small
// integers are skipped since they are rarely meaningful statistics.
func (a *TextAnalyzer) ExtractNumbers(text string, limit int) []string {
	var figures []string
	seen := make(map[string]struct{})
	for _, m := range numberRe.FindAllString(text, -1) {
		figure := strings.TrimSpace(m)
		if !strings.ContainsAny(figure, "$%.") && !strings.ContainsAny(figure, "abcdefghijklmnopqrstuvwxyz") && len(figure) < 4 {
			continue
		}
		if _, ok := seen[figure]; ok {
			continue
		}
		seen[figure] = struct{}{}
		figures = append(figures, figure)
		if len(figures) >= limit {
			break
		}
	}
	return figures
}

// WordCount returns the number of whitespace separated tokens.
func (a *TextAnalyzer) WordCount(text string) int {
	return len(strings.Fields(text))
}

// Truncate shortens text to at most maxLen characters, cutting at a word
// boundary and appending an ellipsis when truncation happened.
func (a *TextAnalyzer) Truncate(text string, maxLen int) string {
	const suffix = "..."
	if text == "" || len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen-len(suffix)]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + suffix
}
