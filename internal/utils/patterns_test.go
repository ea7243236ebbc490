package utils

import "testing"

func TestMatchEpisodeSpanishForm(t *testing.T) {
	match := MatchEpisode("Temporada 2 - Capítulo 14 - El regreso")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Kind != MatchSpanish {
		t.Errorf("Expected kind %q, got %q", MatchSpanish, match.Kind)
	}
	if match.Season != 2 || match.Episode != 14 {
		t.Errorf("Expected season 2 episode 14, got %d/%d", match.Season, match.Episode)
	}
	if match.Title != "El regreso" {
		t.Errorf("Expected title 'El regreso', got %q", match.Title)
	}
}

func TestMatchEpisodePriorityOrder(t *testing.T) {
	// Both the Spanish form and the short 3x7 form are present; the
	// Spanish form must win.
	match := MatchEpisode("Temporada 2 - Capítulo 14 (antes 3x7)")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Kind != MatchSpanish {
		t.Errorf("Expected spanish form to win, got kind %q", match.Kind)
	}
	if match.Season != 2 || match.Episode != 14 {
		t.Errorf("Expected season 2 episode 14, got %d/%d", match.Season, match.Episode)
	}
}

func TestMatchEpisodeSEForm(t *testing.T) {
	match := MatchEpisode("Breaking Bad S05E14 Ozymandias")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Kind != MatchSE {
		t.Errorf("Expected kind %q, got %q", MatchSE, match.Kind)
	}
	if match.Season != 5 || match.Episode != 14 {
		t.Errorf("Expected season 5 episode 14, got %d/%d", match.Season, match.Episode)
	}
	if match.Title != "Ozymandias" {
		t.Errorf("Expected title 'Ozymandias', got %q", match.Title)
	}
}

func TestMatchEpisodeShortForm(t *testing.T) {
	match := MatchEpisode("🔻Lucifer — 02x01 — Audio Latino")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Kind != MatchShort {
		t.Errorf("Expected kind %q, got %q", MatchShort, match.Kind)
	}
	if match.Season != 2 || match.Episode != 1 {
		t.Errorf("Expected season 2 episode 1, got %d/%d", match.Season, match.Episode)
	}
	if match.Title != "Audio Latino" {
		t.Errorf("Expected title 'Audio Latino', got %q", match.Title)
	}
}

func TestMatchEpisodeDefaultTitle(t *testing.T) {
	match := MatchEpisode("S01E03")
	if match == nil {
		t.Fatal("Expected a match, got nil")
	}
	if match.Title != "Episode 3" {
		t.Errorf("Expected default title 'Episode 3', got %q", match.Title)
	}
}

func TestMatchEpisodeNoMatch(t *testing.T) {
	cases := []string{
		"Inception (2010) 1080p",
		"Una película cualquiera",
		"",
	}
	for _, caption := range cases {
		if match := MatchEpisode(caption); match != nil {
			t.Errorf("Expected no match for %q, got %+v", caption, match)
		}
	}
}
