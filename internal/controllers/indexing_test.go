package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/cinestelar/cinarr/internal/services/telegram"
	"github.com/cinestelar/cinarr/internal/services/tmdb"
)

type fakeAnnouncer struct {
	nextID    int64
	published []string
	deleted   []int64
}

func (a *fakeAnnouncer) PublishAnnouncement(ctx context.Context, channelID int64, photoURL, caption string) (int64, error) {
	a.nextID++
	a.published = append(a.published, caption)
	return a.nextID + 900, nil
}

func (a *fakeAnnouncer) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	a.deleted = append(a.deleted, messageID)
	return nil
}

func newTestController(t *testing.T, source *fakeSource, resolver *fakeResolver) (*IndexingController, *models.Database, *fakeAnnouncer, *CacheSessionStore) {
	t.Helper()
	db := newTestDB(t)
	engine := NewScanEngine(db, source, resolver, 1, 2, testLogger())
	announcer := &fakeAnnouncer{}
	sessions := NewCacheSessionStore(6 * time.Hour)
	ctrl := NewIndexingController(db, engine, resolver, announcer, sessions, 500, testLogger())
	return ctrl, db, announcer, sessions
}

func TestStartScanPausesForReview(t *testing.T) {
	source := &fakeSource{messages: map[int64]*telegram.Message{
		101: videoMessage(101, "Inception (2010) 1080p"),
	}}
	resolver := &fakeResolver{
		candidates: []tmdb.Candidate{{TMDBID: 27205, Title: "Inception", Year: 2010, Confidence: 95}},
	}
	ctrl, db, _, _ := newTestController(t, source, resolver)
	db.SetCheckpoint(100)

	snap := ctrl.StartScan(context.Background(), 42, models.ScanKindMovie, 0, 3)

	if snap.State != models.SessionAwaitingConfirm {
		t.Errorf("Expected awaiting confirmation, got %q", snap.State)
	}
	if snap.MessageID != 101 {
		t.Errorf("Expected pending message 101, got %d", snap.MessageID)
	}
	if len(snap.Candidates) != 1 {
		t.Errorf("Expected 1 candidate, got %d", len(snap.Candidates))
	}
	if snap.Done {
		t.Error("Expected run still in progress")
	}
}

func TestConfirmSavesAndFinishesRun(t *testing.T) {
	source := &fakeSource{messages: map[int64]*telegram.Message{
		101: videoMessage(101, "Inception (2010) 1080p"),
	}}
	resolver := &fakeResolver{
		candidates: []tmdb.Candidate{{TMDBID: 27205, Title: "Inception", Year: 2010, Confidence: 95}},
		details: map[int64]*tmdb.MovieDetails{
			27205: {Runtime: 148, Genres: []string{"Action"}},
		},
	}
	ctrl, db, announcer, _ := newTestController(t, source, resolver)
	db.SetCheckpoint(100)

	ctrl.StartScan(context.Background(), 42, models.ScanKindMovie, 0, 3)
	snap, err := ctrl.Confirm(context.Background(), 42)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if snap.Indexed != 1 {
		t.Errorf("Expected 1 indexed, got %d", snap.Indexed)
	}
	if !snap.Done || snap.State != models.SessionIdle {
		t.Errorf("Expected finished idle run, got done=%v state=%q", snap.Done, snap.State)
	}

	movie := db.GetMovieByMessageID(101)
	if movie == nil {
		t.Fatal("Expected movie stored")
	}
	if movie.Title != "Inception" || movie.Runtime != 148 {
		t.Errorf("Expected resolved metadata, got %q/%d", movie.Title, movie.Runtime)
	}
	if movie.ChannelMessageID == 0 {
		t.Error("Expected announcement id recorded")
	}
	if len(announcer.published) != 1 {
		t.Errorf("Expected 1 announcement, got %d", len(announcer.published))
	}
}

func TestConfirmWithoutPendingItem(t *testing.T) {
	ctrl, _, _, _ := newTestController(t, &fakeSource{}, &fakeResolver{})

	if _, err := ctrl.Confirm(context.Background(), 42); err == nil {
		t.Error("Expected an error with nothing awaiting confirmation")
	}
}

func TestSkipLeavesNothingPersisted(t *testing.T) {
	source := &fakeSource{messages: map[int64]*telegram.Message{
		101: videoMessage(101, "Inception (2010)"),
	}}
	resolver := &fakeResolver{
		candidates: []tmdb.Candidate{{TMDBID: 27205, Title: "Inception", Confidence: 95}},
	}
	ctrl, db, _, _ := newTestController(t, source, resolver)
	db.SetCheckpoint(100)

	ctrl.StartScan(context.Background(), 42, models.ScanKindMovie, 0, 3)
	snap, err := ctrl.Skip(context.Background(), 42)
	if err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	if snap.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", snap.Skipped)
	}
	if snap.Indexed != 0 {
		t.Errorf("Expected nothing indexed, got %d", snap.Indexed)
	}
	if db.GetMovieByMessageID(101) != nil {
		t.Error("Expected no movie persisted for a skipped item")
	}
}

func TestEditTitleRefreshesCandidates(t *testing.T) {
	source := &fakeSource{messages: map[int64]*telegram.Message{
		101: videoMessage(101, "Pelicula rara sin resultados"),
	}}
	resolver := &fakeResolver{
		candidates: []tmdb.Candidate{{TMDBID: 77, Title: "Memento", Year: 2000, Confidence: 90}},
	}
	ctrl, db, _, sessions := newTestController(t, source, resolver)
	db.SetCheckpoint(100)

	ctrl.StartScan(context.Background(), 42, models.ScanKindMovie, 0, 3)

	if _, err := ctrl.RequestEdit(42); err != nil {
		t.Fatalf("RequestEdit failed: %v", err)
	}
	if sessions.Get(42).State != models.SessionAwaitingTitle {
		t.Fatalf("Expected awaiting title state, got %q", sessions.Get(42).State)
	}

	if _, err := ctrl.EditTitle(context.Background(), 42, "   "); err == nil {
		t.Error("Expected an error for an empty title")
	}

	snap, err := ctrl.EditTitle(context.Background(), 42, "Memento (2000)")
	if err != nil {
		t.Fatalf("EditTitle failed: %v", err)
	}
	if snap.State != models.SessionAwaitingConfirm {
		t.Errorf("Expected back to confirmation, got %q", snap.State)
	}
	if len(snap.Candidates) != 1 || snap.Candidates[0].TMDBID != 77 {
		t.Errorf("Expected refreshed candidates, got %+v", snap.Candidates)
	}

	session := sessions.Get(42)
	if session.Current.CleanedTitle != "Memento" || session.Current.Year != 2000 {
		t.Errorf("Expected edited title applied, got %q/%d", session.Current.CleanedTitle, session.Current.Year)
	}
}

func TestSaveRetractsPreviousAnnouncement(t *testing.T) {
	resolver := &fakeResolver{
		candidates: []tmdb.Candidate{{TMDBID: 27205, Title: "Inception", Year: 2010, Confidence: 95}},
	}
	ctrl, db, announcer, sessions := newTestController(t, &fakeSource{}, resolver)

	// An earlier save already announced this message
	fileID := "f1"
	oldAnnouncement := int64(900)
	db.UpsertMovie(101, models.MovieFields{FileID: &fileID, ChannelMessageID: &oldAnnouncement})

	session := sessions.Get(42)
	session.State = models.SessionAwaitingConfirm
	session.CurrentMessageID = 101
	session.Current = &ReviewItem{MessageID: 101, FileID: "f1"}
	session.Candidates = resolver.candidates
	sessions.Put(session)

	if _, err := ctrl.Confirm(context.Background(), 42); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if len(announcer.deleted) != 1 || announcer.deleted[0] != 900 {
		t.Errorf("Expected old announcement 900 retracted, got %v", announcer.deleted)
	}
	if len(announcer.published) != 1 {
		t.Errorf("Expected new announcement published, got %d", len(announcer.published))
	}

	movie := db.GetMovieByMessageID(101)
	if movie == nil {
		t.Fatal("Expected movie stored")
	}
	if movie.ChannelMessageID == 900 || movie.ChannelMessageID == 0 {
		t.Errorf("Expected a new announcement id, got %d", movie.ChannelMessageID)
	}
}

func TestResolveShowCreatesCatalogRow(t *testing.T) {
	resolver := &fakeResolver{
		tvCandidates: []tmdb.Candidate{{
			TMDBID:        63174,
			Title:         "Lucifer",
			OriginalTitle: "Lucifer",
			Year:          2016,
			Confidence:    90,
		}},
		tvDetails: map[int64]*tmdb.TVDetails{
			63174: {
				Name:        "Lucifer",
				Genres:      []string{"Crime", "Fantasy"},
				SeasonCount: 6,
				Status:      "Ended",
			},
		},
	}
	ctrl, db, _, _ := newTestController(t, &fakeSource{}, resolver)

	show, err := ctrl.ResolveShow(context.Background(), "Lucifer (2016) 1080p")
	if err != nil {
		t.Fatalf("ResolveShow failed: %v", err)
	}

	if show.TMDBID != 63174 || show.Name != "Lucifer" {
		t.Errorf("Unexpected show %+v", show)
	}
	if show.SeasonCount != 6 || show.Status != "Ended" {
		t.Errorf("Expected details applied, got %d/%q", show.SeasonCount, show.Status)
	}
	if show.Genres != "Crime, Fantasy" {
		t.Errorf("Expected joined genres, got %q", show.Genres)
	}

	// Resolving again reuses the existing row
	again, err := ctrl.ResolveShow(context.Background(), "Lucifer")
	if err != nil {
		t.Fatalf("ResolveShow failed: %v", err)
	}
	if again.ID != show.ID {
		t.Errorf("Expected same row, got ids %d and %d", show.ID, again.ID)
	}
	if db.CountShows() != 1 {
		t.Errorf("Expected 1 show, got %d", db.CountShows())
	}
}

func TestResolveShowNoResults(t *testing.T) {
	ctrl, _, _, _ := newTestController(t, &fakeSource{}, &fakeResolver{})

	if _, err := ctrl.ResolveShow(context.Background(), "Serie inexistente"); err == nil {
		t.Error("Expected an error when the search returns nothing")
	}
	if _, err := ctrl.ResolveShow(context.Background(), "  "); err == nil {
		t.Error("Expected an error for an empty name")
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	ctrl, _, _, sessions := newTestController(t, &fakeSource{}, &fakeResolver{})

	session := sessions.Get(42)
	session.State = models.SessionAwaitingConfirm
	session.Current = &ReviewItem{MessageID: 101}
	session.Indexed = 2
	sessions.Put(session)

	snap := ctrl.Cancel(42)
	if !snap.Done {
		t.Error("Expected run finished")
	}
	if snap.Indexed != 2 {
		t.Errorf("Expected counters reported, got %d", snap.Indexed)
	}

	fresh := sessions.Get(42)
	if fresh.Indexed != 0 || fresh.Current != nil {
		t.Error("Expected a fresh session after cancel")
	}
}

func TestStopDiscardsSession(t *testing.T) {
	ctrl, _, _, sessions := newTestController(t, &fakeSource{}, &fakeResolver{})

	session := sessions.Get(42)
	session.Indexed = 4
	sessions.Put(session)

	snap := ctrl.Stop(42)
	if snap.Indexed != 4 {
		t.Errorf("Expected counters reported, got %d", snap.Indexed)
	}
	if fresh := sessions.Get(42); fresh.Indexed != 0 {
		t.Error("Expected a fresh session after stop")
	}
}
