package models

// ScanKind selects what a catalog scan is looking for
type ScanKind string

const (
	ScanKindMovie   ScanKind = "movie"   // free-text captions resolved against the movie catalog
	ScanKindEpisode ScanKind = "episode" // captions classified by the episode pattern families
)

// SessionState represents where an interactive indexing session is in
// its confirm/edit/save cycle
type SessionState string

const (
	SessionIdle            SessionState = "idle"
	SessionAwaitingConfirm SessionState = "awaiting_confirmation"
	SessionAwaitingTitle   SessionState = "awaiting_title_input"
	SessionSaving          SessionState = "saving"
)
