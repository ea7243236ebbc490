package tmdb

import (
	"sort"
	"strings"
)

// Confidence weights. Popularity, year and title contributions add up to
// at most 100.
const (
	popularityCap   = 30.0
	yearExactScore  = 30.0
	yearCloseScore  = 15.0
	titleExactScore = 40.0
	titleContains   = 30.0 // query contained in (or containing) the primary title
	origContains    = 25.0 // same, against the original title
	wordOverlapMax  = 20.0
)

// rankCandidates scores every candidate against the query and sorts the
// list by descending confidence. The sort is stable so ties keep the
// catalog service's own result order.
func rankCandidates(query string, year int, candidates []Candidate) []Candidate {
	for i := range candidates {
		candidates[i].Confidence = scoreCandidate(query, year, candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// scoreCandidate rates how likely a candidate matches the query, in
// [0, 100].
func scoreCandidate(query string, year int, cand Candidate) float64 {
	score := cand.Popularity
	if score > popularityCap {
		score = popularityCap
	}

	if year > 0 && cand.Year > 0 {
		diff := year - cand.Year
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += yearExactScore
		case 1:
			score += yearCloseScore
		}
	}

	score += titleScore(query, cand.Title, cand.OriginalTitle)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func titleScore(query, title, original string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(title))
	o := strings.ToLower(strings.TrimSpace(original))
	if q == "" || t == "" {
		return 0
	}

	if q == t || (o != "" && q == o) {
		return titleExactScore
	}
	if strings.Contains(t, q) || strings.Contains(q, t) {
		return titleContains
	}
	if o != "" && (strings.Contains(o, q) || strings.Contains(q, o)) {
		return origContains
	}

	// Partial credit for the fraction of query words found in the title
	queryWords := strings.Fields(q)
	if len(queryWords) == 0 {
		return 0
	}
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(t) {
		titleWords[w] = true
	}
	hits := 0
	for _, w := range queryWords {
		if titleWords[w] {
			hits++
		}
	}
	return wordOverlapMax * float64(hits) / float64(len(queryWords))
}
