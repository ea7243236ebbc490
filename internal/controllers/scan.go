package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinestelar/cinarr/internal/metrics"
	"github.com/cinestelar/cinarr/internal/models"
	"github.com/cinestelar/cinarr/internal/services/telegram"
	"github.com/cinestelar/cinarr/internal/services/tmdb"
	"github.com/cinestelar/cinarr/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// progressEvery is the cadence of the progress side channel
	progressEvery = 20

	// autoAcceptConfidence is the score above which a bulk scan trusts
	// the best candidate without operator review
	autoAcceptConfidence = 80.0
)

// MessageSource is the slice of the chat transport the scan engine needs
type MessageSource interface {
	FetchMessage(ctx context.Context, channelID, probeChatID, messageID int64) (*telegram.Message, error)
}

// MetadataResolver is the slice of the metadata catalog the scan engine
// and the interactive layer need
type MetadataResolver interface {
	SearchMovie(ctx context.Context, query string, year int) []tmdb.Candidate
	GetMovieDetails(ctx context.Context, tmdbID int64) (*tmdb.MovieDetails, error)
	SearchTV(ctx context.Context, query string, year int) []tmdb.Candidate
	GetTVDetails(ctx context.Context, tmdbID int64) (*tmdb.TVDetails, error)
	GetSeasonDetails(ctx context.Context, tmdbID int64, season int) ([]tmdb.SeasonEpisode, error)
}

// ScanProgress is emitted through the progress callback every few
// messages
type ScanProgress struct {
	CurrentID int64
	Indexed   int
	Skipped   int
	Errors    int
}

// ReviewItem is a scanned message waiting for operator review
type ReviewItem struct {
	MessageID    int64
	FileID       string
	Caption      string
	CleanedTitle string
	Year         int
	Candidates   []tmdb.Candidate
}

// ScanOptions configures one scan invocation
type ScanOptions struct {
	Kind           models.ScanKind
	ShowID         uint64 // show every matched episode is attributed to (episode scans)
	StartID        int64  // 0 means resume from checkpoint + 1
	EmptyThreshold int    // consecutive empty messages before stopping
	MaxMessages    int    // 0 means unbounded (interactive); bulk scans set a cap
	Review         bool   // pause on the first item needing operator review
	OnProgress     func(ScanProgress)
}

// ScanResult summarizes one scan invocation
type ScanResult struct {
	StartID       int64
	LastExamined  int64
	LastIndexed   int64
	Indexed       int
	Skipped       int
	Errors        int
	Stopped       bool        // operator stop or context cancellation
	PendingReview *ReviewItem // set when the scan paused for review
}

type outcome int

const (
	outcomeEmpty outcome = iota
	outcomeIndexed
	outcomeSkipped
	outcomePending
)

// ScanEngine walks the source channel's message-id space sequentially,
// classifying and persisting one message at a time. It is not safe to
// run two scans over an overlapping id range; the checkpoint is the only
// coordination between runs.
type ScanEngine struct {
	db          *models.Database
	source      MessageSource
	resolver    MetadataResolver
	channelID   int64
	probeChatID int64
	logger      *logrus.Logger
}

// NewScanEngine creates a new scan engine
func NewScanEngine(db *models.Database, source MessageSource, resolver MetadataResolver, channelID, probeChatID int64, logger *logrus.Logger) *ScanEngine {
	return &ScanEngine{
		db:          db,
		source:      source,
		resolver:    resolver,
		channelID:   channelID,
		probeChatID: probeChatID,
		logger:      logger,
	}
}

// Run executes one scan. Cancelling the context is the operator stop
// signal: the scan finishes the message in flight and terminates with
// its checkpoint written.
func (e *ScanEngine) Run(ctx context.Context, opts ScanOptions) *ScanResult {
	startID := opts.StartID
	if startID == 0 {
		startID = e.db.GetCheckpoint() + 1
	}
	threshold := opts.EmptyThreshold
	if threshold <= 0 {
		threshold = 5
	}

	e.logger.WithFields(logrus.Fields{
		"start_id": startID,
		"kind":     opts.Kind,
	}).Info("Starting scan")

	result := &ScanResult{StartID: startID}
	consecutiveEmpty := 0

	for msgID := startID; ; msgID++ {
		if ctx.Err() != nil {
			result.Stopped = true
			break
		}
		if consecutiveEmpty >= threshold {
			break
		}
		if opts.MaxMessages > 0 && msgID >= startID+int64(opts.MaxMessages) {
			break
		}

		if opts.OnProgress != nil && msgID > startID && (msgID-startID)%progressEvery == 0 {
			opts.OnProgress(ScanProgress{
				CurrentID: msgID,
				Indexed:   result.Indexed,
				Skipped:   result.Skipped,
				Errors:    result.Errors,
			})
		}

		out := e.processMessage(ctx, msgID, opts, result)
		result.LastExamined = msgID
		metrics.MessagesScanned.Inc()

		if out == outcomeEmpty {
			consecutiveEmpty++
			continue
		}
		consecutiveEmpty = 0

		if out == outcomePending {
			break
		}
	}

	// Checkpoint policy: the last indexed id when anything was indexed,
	// otherwise the last id examined, so confirmed-empty stretches are
	// not re-scanned.
	switch {
	case result.PendingReview != nil:
		e.db.SetCheckpoint(result.PendingReview.MessageID)
	case result.Indexed > 0:
		e.db.SetCheckpoint(result.LastIndexed)
	case result.LastExamined > 0:
		e.db.SetCheckpoint(result.LastExamined)
	}

	e.logger.WithFields(logrus.Fields{
		"indexed": result.Indexed,
		"skipped": result.Skipped,
		"errors":  result.Errors,
		"last_id": result.LastExamined,
	}).Info("Scan finished")

	return result
}

// processMessage runs the per-message state machine:
// fetch -> classify -> resolve -> persist. Counters are only mutated
// after a call has returned.
func (e *ScanEngine) processMessage(ctx context.Context, msgID int64, opts ScanOptions, result *ScanResult) outcome {
	msg, err := e.source.FetchMessage(ctx, e.channelID, e.probeChatID, msgID)
	if err != nil {
		// A fetch error counts the same as a missing message toward the
		// empty run, so a transport outage can end a scan early.
		if err != telegram.ErrNotFound {
			e.logger.WithError(err).WithField("message_id", msgID).Debug("Message fetch failed")
			metrics.ScanErrors.Inc()
		}
		return outcomeEmpty
	}

	if !msg.HasMedia() {
		return outcomeEmpty
	}

	caption := strings.TrimSpace(msg.MediaCaption())
	if caption == "" {
		caption = fmt.Sprintf("Video %d", msgID)
	}

	if opts.Kind == models.ScanKindEpisode {
		return e.processEpisode(ctx, msgID, msg, caption, opts, result)
	}
	return e.processMovie(ctx, msgID, msg, caption, opts, result)
}

// processEpisode classifies a caption through the episode pattern
// families. Pattern extraction is show-agnostic; every match is
// attributed to the show the scan was configured for.
func (e *ScanEngine) processEpisode(ctx context.Context, msgID int64, msg *telegram.Message, caption string, opts ScanOptions, result *ScanResult) outcome {
	match := utils.MatchEpisode(caption)
	if match == nil {
		return outcomeEmpty
	}

	if existing := e.db.GetEpisodeByMessageID(msgID); existing != nil {
		result.Skipped++
		metrics.ItemsSkipped.Inc()
		return outcomeSkipped
	}

	fields := models.EpisodeFields{
		MessageID: &msgID,
		FileID:    &msg.Video.FileID,
		Title:     &match.Title,
	}

	// Best-effort enrichment from the season record
	if show := e.db.GetShowByID(opts.ShowID); show != nil && show.TMDBID != 0 {
		if episodes, err := e.resolver.GetSeasonDetails(ctx, show.TMDBID, match.Season); err == nil {
			for _, ep := range episodes {
				if ep.EpisodeNumber == match.Episode {
					fields.Title = &ep.Name
					fields.Overview = &ep.Overview
					fields.AirDate = &ep.AirDate
					fields.Runtime = &ep.Runtime
					fields.StillURL = &ep.StillURL
					break
				}
			}
		}
	}

	if e.db.UpsertEpisode(opts.ShowID, match.Season, match.Episode, fields) == nil {
		result.Errors++
		metrics.ScanErrors.Inc()
		return outcomeEmpty
	}

	result.Indexed++
	result.LastIndexed = msgID
	metrics.ItemsIndexed.WithLabelValues("episode").Inc()
	e.logger.WithFields(logrus.Fields{
		"message_id": msgID,
		"season":     match.Season,
		"episode":    match.Episode,
	}).Info("Indexed episode")
	return outcomeIndexed
}

// processMovie treats the caption as a free-text title, resolves it
// against the metadata catalog and either hands it to the operator or
// persists it directly.
func (e *ScanEngine) processMovie(ctx context.Context, msgID int64, msg *telegram.Message, caption string, opts ScanOptions, result *ScanResult) outcome {
	if existing := e.db.GetMovieByMessageID(msgID); existing != nil {
		result.Skipped++
		metrics.ItemsSkipped.Inc()
		return outcomeSkipped
	}

	cleaned, year := utils.CleanTitle(caption)
	candidates := e.resolver.SearchMovie(ctx, cleaned, year)

	// Ranked fallback queries when the primary search comes up empty
	if len(candidates) == 0 {
		for _, term := range utils.SuggestSearchTerms(caption) {
			if term == cleaned {
				continue
			}
			if candidates = e.resolver.SearchMovie(ctx, term, 0); len(candidates) > 0 {
				break
			}
		}
	}

	if opts.Review {
		result.PendingReview = &ReviewItem{
			MessageID:    msgID,
			FileID:       msg.Video.FileID,
			Caption:      caption,
			CleanedTitle: cleaned,
			Year:         year,
			Candidates:   candidates,
		}
		return outcomePending
	}

	fields := models.MovieFields{
		FileID: &msg.Video.FileID,
		Title:  &cleaned,
	}
	if year != 0 {
		fields.Year = &year
	}

	if len(candidates) > 0 && candidates[0].Confidence >= autoAcceptConfidence {
		best := candidates[0]
		fields.Title = &best.Title
		fields.OriginalTitle = &best.OriginalTitle
		fields.Year = &best.Year
		fields.Overview = &best.Overview
		fields.PosterURL = &best.PosterURL
		fields.BackdropURL = &best.BackdropURL
		fields.VoteAverage = &best.VoteAverage
		fields.TMDBID = &best.TMDBID
		if details, err := e.resolver.GetMovieDetails(ctx, best.TMDBID); err == nil {
			fields.Runtime = &details.Runtime
			genres := strings.Join(details.Genres, ", ")
			fields.Genres = &genres
		}
	}

	if e.db.UpsertMovie(msgID, fields) == nil {
		result.Errors++
		metrics.ScanErrors.Inc()
		return outcomeEmpty
	}

	result.Indexed++
	result.LastIndexed = msgID
	metrics.ItemsIndexed.WithLabelValues("movie").Inc()
	e.logger.WithFields(logrus.Fields{
		"message_id": msgID,
		"title":      *fields.Title,
	}).Info("Indexed movie")
	return outcomeIndexed
}
