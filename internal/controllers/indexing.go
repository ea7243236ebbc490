package controllers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/cinestelar/cinarr/internal/services/tmdb"
	"github.com/cinestelar/cinarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// Announcer is the slice of the chat transport the interactive layer
// needs to publish catalog announcements
type Announcer interface {
	PublishAnnouncement(ctx context.Context, channelID int64, photoURL, caption string) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}

// SessionSnapshot is the view of a session returned to the bot surface
// after every operation
type SessionSnapshot struct {
	State      models.SessionState
	MessageID  int64
	Candidates []tmdb.Candidate
	Indexed    int
	Skipped    int
	Errors     int
	Done       bool
}

// IndexingController drives operator-reviewed indexing runs. Each
// operation corresponds to one bot command or callback, takes the
// operator's session through its state machine and returns a snapshot
// for the reply.
type IndexingController struct {
	db                    *models.Database
	engine                *ScanEngine
	resolver              MetadataResolver
	announcer             Announcer
	sessions              SessionStore
	verificationChannelID int64
	logger                *logrus.Logger

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
}

// NewIndexingController creates a new indexing controller
func NewIndexingController(db *models.Database, engine *ScanEngine, resolver MetadataResolver, announcer Announcer, sessions SessionStore, verificationChannelID int64, logger *logrus.Logger) *IndexingController {
	return &IndexingController{
		db:                    db,
		engine:                engine,
		resolver:              resolver,
		announcer:             announcer,
		sessions:              sessions,
		verificationChannelID: verificationChannelID,
		logger:                logger,
		cancels:               make(map[int64]context.CancelFunc),
	}
}

// ResolveShow looks up a show by name and ensures its catalog row
// exists, returning the row an episode scan is then attributed to. The
// top-ranked TV candidate wins; its per-title details fill the row when
// the lookup succeeds.
func (c *IndexingController) ResolveShow(ctx context.Context, name string) (*models.Show, error) {
	cleaned, year := utils.CleanTitle(name)
	if cleaned == "" {
		return nil, fmt.Errorf("show name must not be empty")
	}

	candidates := c.resolver.SearchTV(ctx, cleaned, year)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no show found for %q", cleaned)
	}
	best := candidates[0]

	fields := models.ShowFields{
		Name:         &best.Title,
		OriginalName: &best.OriginalTitle,
		Year:         &best.Year,
		Overview:     &best.Overview,
		PosterURL:    &best.PosterURL,
		BackdropURL:  &best.BackdropURL,
		VoteAverage:  &best.VoteAverage,
	}
	if details, err := c.resolver.GetTVDetails(ctx, best.TMDBID); err == nil {
		fields.Name = &details.Name
		fields.OriginalName = &details.OriginalName
		fields.Overview = &details.Overview
		genres := strings.Join(details.Genres, ", ")
		fields.Genres = &genres
		fields.SeasonCount = &details.SeasonCount
		fields.Status = &details.Status
	} else {
		c.logger.WithError(err).WithField("tmdb_id", best.TMDBID).Warn("Failed to fetch show details")
	}

	show := c.db.GetOrCreateShow(best.TMDBID, fields)
	if show == nil {
		return nil, fmt.Errorf("store show %q", best.Title)
	}

	c.logger.WithFields(logrus.Fields{
		"show_id": show.ID,
		"name":    show.Name,
		"tmdb_id": show.TMDBID,
	}).Info("Resolved show")
	return show, nil
}

// StartScan begins an interactive run for the operator and scans until
// the first item needing review or until the channel tail is reached.
func (c *IndexingController) StartScan(ctx context.Context, operatorID int64, kind models.ScanKind, showID uint64, emptyThreshold int) SessionSnapshot {
	session := c.sessions.Get(operatorID)
	session.State = models.SessionIdle
	session.Indexed = 0
	session.Skipped = 0
	session.Errors = 0
	session.Current = nil
	session.Candidates = nil
	c.sessions.Put(session)

	return c.advance(ctx, session, ScanOptions{
		Kind:           kind,
		ShowID:         showID,
		EmptyThreshold: emptyThreshold,
		Review:         kind == models.ScanKindMovie,
	})
}

// advance runs the scan engine from its options and folds the result
// into the session. A pending review item parks the session in the
// awaiting-confirmation state; termination closes the run.
func (c *IndexingController) advance(ctx context.Context, session *Session, opts ScanOptions) SessionSnapshot {
	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancels[session.OperatorID] = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		c.mu.Lock()
		delete(c.cancels, session.OperatorID)
		c.mu.Unlock()
	}()

	result := c.engine.Run(runCtx, opts)

	session.Indexed += result.Indexed
	session.Skipped += result.Skipped
	session.Errors += result.Errors

	if result.PendingReview != nil {
		session.State = models.SessionAwaitingConfirm
		session.Current = result.PendingReview
		session.CurrentMessageID = result.PendingReview.MessageID
		session.Candidates = result.PendingReview.Candidates
		c.sessions.Put(session)
		return c.snapshot(session, false)
	}

	session.State = models.SessionIdle
	session.Current = nil
	session.Candidates = nil
	c.sessions.Put(session)
	return c.snapshot(session, true)
}

// Confirm accepts the top-ranked candidate for the pending item
func (c *IndexingController) Confirm(ctx context.Context, operatorID int64) (SessionSnapshot, error) {
	return c.SelectCandidate(ctx, operatorID, 0)
}

// SelectCandidate accepts the ranked candidate at the given position
func (c *IndexingController) SelectCandidate(ctx context.Context, operatorID int64, index int) (SessionSnapshot, error) {
	session := c.sessions.Get(operatorID)
	if session.State != models.SessionAwaitingConfirm || session.Current == nil {
		return c.snapshot(session, false), fmt.Errorf("no item awaiting confirmation")
	}
	if index < 0 || index >= len(session.Candidates) {
		return c.snapshot(session, false), fmt.Errorf("candidate %d out of range", index)
	}

	session.State = models.SessionSaving
	c.sessions.Put(session)

	if err := c.save(ctx, session, session.Candidates[index]); err != nil {
		session.Errors++
		c.logger.WithError(err).WithField("message_id", session.CurrentMessageID).Error("Failed to save movie")
	} else {
		session.Indexed++
	}

	return c.resume(ctx, session), nil
}

// RequestEdit switches the pending item to manual title entry
func (c *IndexingController) RequestEdit(operatorID int64) (SessionSnapshot, error) {
	session := c.sessions.Get(operatorID)
	if session.State != models.SessionAwaitingConfirm || session.Current == nil {
		return c.snapshot(session, false), fmt.Errorf("no item awaiting confirmation")
	}
	session.State = models.SessionAwaitingTitle
	c.sessions.Put(session)
	return c.snapshot(session, false), nil
}

// EditTitle re-resolves the pending item with an operator-supplied
// title and returns to the confirmation state with fresh candidates.
func (c *IndexingController) EditTitle(ctx context.Context, operatorID int64, text string) (SessionSnapshot, error) {
	session := c.sessions.Get(operatorID)
	if session.State != models.SessionAwaitingTitle || session.Current == nil {
		return c.snapshot(session, false), fmt.Errorf("no item awaiting title input")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return c.snapshot(session, false), fmt.Errorf("title must not be empty")
	}

	cleaned, year := utils.CleanTitle(text)
	session.Current.CleanedTitle = cleaned
	if year != 0 {
		session.Current.Year = year
	}
	session.Candidates = c.resolver.SearchMovie(ctx, cleaned, year)
	session.Current.Candidates = session.Candidates
	session.State = models.SessionAwaitingConfirm
	c.sessions.Put(session)
	return c.snapshot(session, false), nil
}

// Skip discards the pending item and continues the scan
func (c *IndexingController) Skip(ctx context.Context, operatorID int64) (SessionSnapshot, error) {
	session := c.sessions.Get(operatorID)
	if session.Current == nil {
		return c.snapshot(session, false), fmt.Errorf("no item awaiting review")
	}
	session.Skipped++
	return c.resume(ctx, session), nil
}

// Stop ends the operator's run. Any scan in flight is cancelled and the
// session discarded; counters accumulated so far are returned.
func (c *IndexingController) Stop(operatorID int64) SessionSnapshot {
	c.mu.Lock()
	if cancel, ok := c.cancels[operatorID]; ok {
		cancel()
	}
	c.mu.Unlock()

	session := c.sessions.Get(operatorID)
	snap := c.snapshot(session, true)
	c.sessions.Delete(operatorID)
	return snap
}

// Cancel abandons the pending item without touching any counter and
// ends the run
func (c *IndexingController) Cancel(operatorID int64) SessionSnapshot {
	session := c.sessions.Get(operatorID)
	session.State = models.SessionIdle
	session.Current = nil
	session.Candidates = nil
	snap := c.snapshot(session, true)
	c.sessions.Delete(operatorID)
	return snap
}

// resume continues the scan after the pending item was resolved
func (c *IndexingController) resume(ctx context.Context, session *Session) SessionSnapshot {
	nextID := session.CurrentMessageID + 1
	session.Current = nil
	session.Candidates = nil
	c.sessions.Put(session)
	return c.advance(ctx, session, ScanOptions{
		Kind:    models.ScanKindMovie,
		StartID: nextID,
		Review:  true,
	})
}

// save persists the accepted candidate and republishes its
// announcement. Saving the same message twice retracts the previous
// announcement first, so the verification channel never carries two
// cards for one file.
func (c *IndexingController) save(ctx context.Context, session *Session, candidate tmdb.Candidate) error {
	item := session.Current

	fields := models.MovieFields{
		FileID:        &item.FileID,
		Title:         &candidate.Title,
		OriginalTitle: &candidate.OriginalTitle,
		Year:          &candidate.Year,
		Overview:      &candidate.Overview,
		PosterURL:     &candidate.PosterURL,
		BackdropURL:   &candidate.BackdropURL,
		VoteAverage:   &candidate.VoteAverage,
		TMDBID:        &candidate.TMDBID,
	}
	if details, err := c.resolver.GetMovieDetails(ctx, candidate.TMDBID); err == nil {
		fields.Runtime = &details.Runtime
		genres := strings.Join(details.Genres, ", ")
		fields.Genres = &genres
	}

	if existing := c.db.GetMovieByMessageID(item.MessageID); existing != nil && existing.ChannelMessageID != 0 {
		if err := c.announcer.DeleteMessage(ctx, c.verificationChannelID, existing.ChannelMessageID); err != nil {
			c.logger.WithError(err).Warn("Failed to retract previous announcement")
		}
	}

	movie := c.db.UpsertMovie(item.MessageID, fields)
	if movie == nil {
		return fmt.Errorf("upsert movie message %d", item.MessageID)
	}

	if c.verificationChannelID != 0 {
		announcementID, err := c.announcer.PublishAnnouncement(ctx, c.verificationChannelID, movie.PosterURL, formatAnnouncement(movie))
		if err != nil {
			c.logger.WithError(err).Warn("Failed to publish announcement")
		} else {
			cid := announcementID
			c.db.UpsertMovie(item.MessageID, models.MovieFields{ChannelMessageID: &cid})
		}
	}

	c.logger.WithFields(logrus.Fields{
		"message_id": item.MessageID,
		"title":      movie.Title,
		"tmdb_id":    candidate.TMDBID,
	}).Info("Saved movie")
	return nil
}

func (c *IndexingController) snapshot(session *Session, done bool) SessionSnapshot {
	return SessionSnapshot{
		State:      session.State,
		MessageID:  session.CurrentMessageID,
		Candidates: session.Candidates,
		Indexed:    session.Indexed,
		Skipped:    session.Skipped,
		Errors:     session.Errors,
		Done:       done,
	}
}

// formatAnnouncement renders the caption of a catalog announcement
func formatAnnouncement(movie *models.Movie) string {
	var b strings.Builder
	b.WriteString(utils.FormatTitleWithYear(movie.Title, movie.Year))
	if movie.Genres != "" {
		b.WriteString("\n")
		b.WriteString(movie.Genres)
	}
	if movie.VoteAverage > 0 {
		b.WriteString(fmt.Sprintf("\n⭐ %.1f", movie.VoteAverage))
	}
	if movie.Overview != "" {
		b.WriteString("\n\n")
		b.WriteString(movie.Overview)
	}
	return b.String()
}
