// Package match implements the multi-signal fuzzy title matching used to
// pair a source event with a ticket-catalog candidate.
package match

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Matching weights and thresholds. The weighting and acceptance threshold
// are fixed heuristics kept for behavioral parity.
const (
	exactWeight   = 0.4
	overlapWeight = 0.4
	artistWeight  = 0.2

	// MinScore is the acceptance threshold: candidates scoring at or below
	// it are rejected.
	MinScore = 0.3

	// Artist/team token scoring.
	tokenContainsPoints = 0.5
	tokenSimilarPoints  = 0.3
	tokenSimilarCutoff  = 0.8
	artistTokenCount    = 3
	minArtistTokenLen   = 4
	minWordLen          = 3
)

var (
	nonWordRe = regexp.MustCompile(`[^\w\s]`)
	versusRe  = regexp.MustCompile(`(?i)\s+vs?\s+`)

	// stopWords carry no matching signal between titles.
	stopWords = map[string]bool{
		"the": true, "and": true, "or": true, "at": true, "in": true,
		"on": true, "vs": true, "v": true, "tour": true, "live": true,
		"show": true,
	}

	// stringMetric approximates a whole-string similarity ratio over
	// character bigrams.
	stringMetric = metrics.NewSorensenDice()
	// tokenMetric compares short artist/team tokens.
	tokenMetric = metrics.NewJaroWinkler()
)

// CleanTitle prepares an event title for querying: separators are dropped,
// and head-to-head titles ("A vs B", "A @ B") are split into their two team
// tokens rejoined with a space.
func CleanTitle(title string) string {
	clean := strings.ReplaceAll(title, " - ", " ")
	clean = strings.ReplaceAll(clean, "@", "")
	clean = strings.ReplaceAll(clean, "vs", "v")
	clean = strings.TrimSpace(clean)

	lower := strings.ToLower(title)
	if strings.Contains(lower, "vs") || strings.Contains(lower, " v ") {
		teams := versusRe.Split(title, -1)
		if len(teams) == 2 {
			clean = strings.TrimSpace(teams[0]) + " " + strings.TrimSpace(teams[1])
		}
	}
	return clean
}

// Normalize lowercases a title, strips punctuation, and removes stop words
// and short words so only load-bearing tokens remain.
func Normalize(title string) string {
	normalized := nonWordRe.ReplaceAllString(strings.ToLower(title), " ")
	var words []string
	for _, w := range strings.Fields(normalized) {
		if stopWords[w] || len(w) < minWordLen {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// Score computes the combined similarity between a source title and a
// catalog candidate name. Both raw forms are taken so the artist-token
// component can see the original word order.
func Score(target, candidate string) float64 {
	targetNorm := Normalize(target)
	candNorm := Normalize(candidate)

	exact := 0.0
	if targetNorm != "" && candNorm != "" {
		exact = strutil.Similarity(targetNorm, candNorm, stringMetric)
	}
	overlap := wordOverlap(targetNorm, candNorm)
	artist := artistScore(target, candidate)

	return exact*exactWeight + overlap*overlapWeight + artist*artistWeight
}

// wordOverlap is the Jaccard overlap of the two titles' word sets.
func wordOverlap(a, b string) float64 {
	wordsA := toSet(strings.Fields(a))
	wordsB := toSet(strings.Fields(b))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// artistScore rewards overlap between the leading artist/team tokens of the
// two titles: substring containment scores highest, near-identical tokens a
// little less, bounded at 1.0.
func artistScore(target, candidate string) float64 {
	targetWords := headWords(target, artistTokenCount)
	candWords := headWords(candidate, artistTokenCount)

	score := 0.0
	for _, tw := range targetWords {
		if len(tw) < minArtistTokenLen {
			continue
		}
		for _, cw := range candWords {
			switch {
			case strings.Contains(cw, tw) || strings.Contains(tw, cw):
				score += tokenContainsPoints
			case strutil.Similarity(tw, cw, tokenMetric) > tokenSimilarCutoff:
				score += tokenSimilarPoints
			}
		}
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

func headWords(s string, n int) []string {
	words := strings.Fields(strings.ToLower(s))
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
