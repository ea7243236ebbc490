package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MatchKind identifies which caption family produced an episode match
type MatchKind string

const (
	MatchSpanish MatchKind = "spanish" // "Temporada 2 - Capítulo 14"
	MatchSE      MatchKind = "se"      // "S01E01"
	MatchShort   MatchKind = "short"   // "2x14"
)

// EpisodeMatch is the result of classifying a caption as an episode
type EpisodeMatch struct {
	Kind    MatchKind
	Season  int
	Episode int
	Title   string // text after the matched token, never empty
}

var (
	spanishPattern = regexp.MustCompile(`(?i)temporada\s*(\d+)\s*[-–—]\s*cap[ií]tulo\s*(\d+)`)
	sePattern      = regexp.MustCompile(`(?i)s(\d+)e(\d+)`)
	shortPattern   = regexp.MustCompile(`(\d+)[xX](\d+)`)
)

// Families are tried in this order and the first match wins. The order
// matters: the short NxM form is a substring of longer formats and must
// be the last resort.
var episodePatterns = []struct {
	kind MatchKind
	re   *regexp.Regexp
}{
	{MatchSpanish, spanishPattern},
	{MatchSE, sePattern},
	{MatchShort, shortPattern},
}

// MatchEpisode classifies a caption as an episode. A nil result means the
// caption is not episode content, which is an expected outcome, not an
// error.
func MatchEpisode(caption string) *EpisodeMatch {
	for _, p := range episodePatterns {
		loc := p.re.FindStringSubmatchIndex(caption)
		if loc == nil {
			continue
		}
		season, err := strconv.Atoi(caption[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		episode, err := strconv.Atoi(caption[loc[4]:loc[5]])
		if err != nil {
			continue
		}
		return &EpisodeMatch{
			Kind:    p.kind,
			Season:  season,
			Episode: episode,
			Title:   trailingTitle(caption[loc[1]:], episode),
		}
	}
	return nil
}

// trailingTitle extracts the episode title that follows a matched token,
// dropping an optional dash separator.
func trailingTitle(rest string, episode int) string {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimLeft(rest, "-–— ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return fmt.Sprintf("Episode %d", episode)
	}
	return rest
}
