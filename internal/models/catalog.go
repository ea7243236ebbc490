package models

import "time"

// maxFieldLen caps long text fields before they are written, matching
// the storage schema's column width.
const maxFieldLen = 500

// Movie is one catalog entry backed by a storage channel message
type Movie struct {
	ID        uint64 `boltholdKey:"ID"`
	MessageID int64  `boltholdIndex:"MessageID"` // source channel message id, one row per id

	FileID        string // opaque media reference for later delivery
	Title         string
	OriginalTitle string
	Year          int
	Overview      string
	PosterURL     string
	BackdropURL   string
	VoteAverage   float64
	Runtime       int
	Genres        string // comma separated
	TMDBID        int64  `boltholdIndex:"TMDBID"`

	ChannelMessageID int64 // announcement published in the verification channel

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Show owns zero or more episodes
type Show struct {
	ID     uint64 `boltholdKey:"ID"`
	TMDBID int64  `boltholdIndex:"TMDBID"` // one row per TMDB id

	Name         string
	OriginalName string
	Year         int
	Overview     string
	PosterURL    string
	BackdropURL  string
	VoteAverage  float64
	Genres       string
	SeasonCount  int
	Status       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Episode is one indexed episode of a show. The (ShowID, SeasonNumber,
// EpisodeNumber) tuple is logically unique; the store checks before
// inserting because bolthold does not enforce compound uniqueness.
type Episode struct {
	ID        uint64 `boltholdKey:"ID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	MessageID int64  `boltholdIndex:"MessageID"`

	FileID        string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	Overview      string
	AirDate       string
	Runtime       int
	StillURL      string

	ChannelMessageID int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConfigEntry is one scalar in the key-value config table
type ConfigEntry struct {
	Key   string `boltholdKey:"Key"`
	Value string
}

// MovieFields carries an optional-field update for a movie row. Nil
// members leave the stored value untouched; present string members are
// length-capped before they are applied.
type MovieFields struct {
	FileID           *string
	Title            *string
	OriginalTitle    *string
	Year             *int
	Overview         *string
	PosterURL        *string
	BackdropURL      *string
	VoteAverage      *float64
	Runtime          *int
	Genres           *string
	TMDBID           *int64
	ChannelMessageID *int64
}

func (f MovieFields) apply(m *Movie) {
	setString(&m.FileID, f.FileID)
	setString(&m.Title, f.Title)
	setString(&m.OriginalTitle, f.OriginalTitle)
	setInt(&m.Year, f.Year)
	setString(&m.Overview, f.Overview)
	setString(&m.PosterURL, f.PosterURL)
	setString(&m.BackdropURL, f.BackdropURL)
	setFloat(&m.VoteAverage, f.VoteAverage)
	setInt(&m.Runtime, f.Runtime)
	setString(&m.Genres, f.Genres)
	setInt64(&m.TMDBID, f.TMDBID)
	setInt64(&m.ChannelMessageID, f.ChannelMessageID)
}

// ShowFields carries the initial attributes for a show row
type ShowFields struct {
	Name         *string
	OriginalName *string
	Year         *int
	Overview     *string
	PosterURL    *string
	BackdropURL  *string
	VoteAverage  *float64
	Genres       *string
	SeasonCount  *int
	Status       *string
}

func (f ShowFields) apply(s *Show) {
	setString(&s.Name, f.Name)
	setString(&s.OriginalName, f.OriginalName)
	setInt(&s.Year, f.Year)
	setString(&s.Overview, f.Overview)
	setString(&s.PosterURL, f.PosterURL)
	setString(&s.BackdropURL, f.BackdropURL)
	setFloat(&s.VoteAverage, f.VoteAverage)
	setString(&s.Genres, f.Genres)
	setInt(&s.SeasonCount, f.SeasonCount)
	setString(&s.Status, f.Status)
}

// EpisodeFields carries an optional-field update for an episode row
type EpisodeFields struct {
	MessageID        *int64
	FileID           *string
	Title            *string
	Overview         *string
	AirDate          *string
	Runtime          *int
	StillURL         *string
	ChannelMessageID *int64
}

func (f EpisodeFields) apply(e *Episode) {
	setInt64(&e.MessageID, f.MessageID)
	setString(&e.FileID, f.FileID)
	setString(&e.Title, f.Title)
	setString(&e.Overview, f.Overview)
	setString(&e.AirDate, f.AirDate)
	setInt(&e.Runtime, f.Runtime)
	setString(&e.StillURL, f.StillURL)
	setInt64(&e.ChannelMessageID, f.ChannelMessageID)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > maxFieldLen {
		return string(runes[:maxFieldLen])
	}
	return s
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = truncate(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setInt64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
