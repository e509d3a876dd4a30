package release

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts sequence numbers from titles (e.g., "Vol 2", "III" once normalized).
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// MatchConfidence represents the confidence level of a title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// MatchResult represents the result of a fuzzy title match.
type MatchResult struct {
	Title      string  // The matched candidate title
	Score      float64 // Jaro-Winkler similarity score (0.0-1.0)
	Confidence MatchConfidence
}

// Similarity returns the Jaro-Winkler similarity between two titles after
// normalization. Jaro-Winkler favors shared prefixes, which suits artist and
// album names.
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(CleanTitle(a), CleanTitle(b)))
}

// MatchTitle finds the best match for a parsed title against candidate titles.
// Applies a bonus when sequence numbers match between parsed and candidate
// (volume numbers, numbered albums) and a penalty when they conflict.
func MatchTitle(parsed string, candidates []string) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{Confidence: ConfidenceNone}
	}

	normalizedParsed := CleanTitle(parsed)
	parsedNumbers := extractNumbers(normalizedParsed)

	best := MatchResult{Confidence: ConfidenceNone}

	for _, candidate := range candidates {
		normalizedCandidate := CleanTitle(candidate)

		score := float64(edlib.JaroWinklerSimilarity(normalizedParsed, normalizedCandidate))
		score = adjustScoreForNumbers(score, parsedNumbers, extractNumbers(normalizedCandidate))

		if score > best.Score {
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
		best.Title = ""
	}

	return best
}

func extractNumbers(title string) []string {
	return numberRegex.FindAllString(title, -1)
}

// adjustScoreForNumbers modifies the similarity score based on sequence
// number matching between the parsed title and a candidate.
func adjustScoreForNumbers(score float64, parsedNums, candidateNums []string) float64 {
	if len(parsedNums) == 0 {
		return score
	}

	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool)
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range parsedNums {
		if candidateSet[n] {
			// Bonus for matching sequence number, capped at 1.0
			return min(score*1.05, 1.0)
		}
	}

	// Penalty for mismatched numbers
	return score * 0.90
}
