package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearParenPattern = regexp.MustCompile(`\((\d{4})\)`)
	yearBarePattern  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	separatorPattern = regexp.MustCompile(`[_.]`)
	spacePattern     = regexp.MustCompile(`\s+`)
	edgePunctPattern = regexp.MustCompile(`^[^\w\s]+|[^\w\s]+$`)
)

// noisePatterns are applied in this fixed order so overlapping matches
// resolve consistently by removal order.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[[^\]]*\]`),          // bracketed annotations: [1080p], [Latino]
	regexp.MustCompile(`(?i)\(.*?p\)`),        // quality in parens: (1080p)
	regexp.MustCompile(`(?i)\b\d{3,4}p\b`),    // 1080p, 720p, 2160p
	regexp.MustCompile(`(?i)\b4K\b`),
	regexp.MustCompile(`(?i)\bUHD\b`),
	regexp.MustCompile(`(?i)\bFHD\b`),
	regexp.MustCompile(`(?i)\bHD\b`),
	regexp.MustCompile(`(?i)\bBluRay\b`),
	regexp.MustCompile(`(?i)\bBRRip\b`),
	regexp.MustCompile(`(?i)\bWEBRip\b`),
	regexp.MustCompile(`(?i)\bWEB-DL\b`),
	regexp.MustCompile(`(?i)\bHDRip\b`),
	regexp.MustCompile(`(?i)\bDVDRip\b`),
	regexp.MustCompile(`(?i)\bx264\b`),
	regexp.MustCompile(`(?i)\bx265\b`),
	regexp.MustCompile(`(?i)\bHEVC\b`),
	regexp.MustCompile(`(?i)\bh264\b`),
	regexp.MustCompile(`(?i)\bh265\b`),
	regexp.MustCompile(`(?i)\b10bit\b`),
	regexp.MustCompile(`(?i)\bAAC\b`),
	regexp.MustCompile(`(?i)\bAC3\b`),
	regexp.MustCompile(`(?i)\bDTS\b`),
	regexp.MustCompile(`(?i)\bLatino\b`),
	regexp.MustCompile(`(?i)\bEspañol\b`),
	regexp.MustCompile(`(?i)\bSpanish\b`),
	regexp.MustCompile(`(?i)\bEnglish\b`),
	regexp.MustCompile(`(?i)\bSubtitulado\b`),
	regexp.MustCompile(`(?i)\bSubs\b`),
	regexp.MustCompile(`(?i)\bDual\b`),
	regexp.MustCompile(`(?i)\bExtended\b`),
	regexp.MustCompile(`(?i)\bUnrated\b`),
	regexp.MustCompile(`(?i)\bDirector'?s? Cut\b`),
	regexp.MustCompile(`(?i)\bREMAST(ER|ERED)\b`),
	regexp.MustCompile(`(?i)\bIMAX\b`),
	regexp.MustCompile(`(?i)\b-\s*\w+$`), // trailing release group: "- YIFY"
}

// dashSpacePattern turns free-standing dashes into plain separators
var dashSpacePattern = regexp.MustCompile(`\s+-\s+`)

// ExtractYear pulls a release year out of a caption, either
// parenthesized or as a bare 19xx/20xx token. Returns 0 when absent.
func ExtractYear(text string) int {
	if m := yearParenPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	if m := yearBarePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	return 0
}

// CleanTitle reduces a raw filename-like caption to a clean search
// string plus its release year (0 when absent).
//
// "Avengers Endgame (2019) [1080p] [Latino] BluRay" -> "Avengers Endgame", 2019
func CleanTitle(text string) (string, int) {
	if text == "" {
		return "", 0
	}

	year := ExtractYear(text)

	cleaned := yearParenPattern.ReplaceAllString(text, "")
	for _, p := range noisePatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}

	cleaned = dashSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = separatorPattern.ReplaceAllString(cleaned, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = edgePunctPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned, year
}

// SuggestSearchTerms generates ranked fallback queries for a caption,
// used when the primary metadata search returns nothing.
func SuggestSearchTerms(text string) []string {
	cleaned, year := CleanTitle(text)

	var suggestions []string

	if year != 0 {
		suggestions = append(suggestions, fmt.Sprintf("%s %d", cleaned, year))
	}
	suggestions = append(suggestions, cleaned)

	// A subtitle after ":" often breaks exact search, try without it
	if idx := strings.Index(cleaned, ":"); idx >= 0 {
		mainTitle := strings.TrimSpace(cleaned[:idx])
		if year != 0 {
			suggestions = append(suggestions, fmt.Sprintf("%s %d", mainTitle, year))
		}
		suggestions = append(suggestions, mainTitle)
	}

	// Overlong titles get truncated at the last full word
	if runes := []rune(cleaned); len(runes) > 50 {
		short := string(runes[:50])
		if i := strings.LastIndex(short, " "); i > 0 {
			short = short[:i]
		}
		suggestions = append(suggestions, short)
	}

	return suggestions
}

// FormatTitleWithYear renders "Title (Year)" for display
func FormatTitleWithYear(title string, year int) string {
	if year != 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}
