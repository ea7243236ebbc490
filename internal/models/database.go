package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// checkpointKey is the config entry holding the highest fully processed
// source message id. Absent means nothing indexed yet.
const checkpointKey = "last_indexed_message"

// Database wraps the bolthold store. Write failures are logged and
// surfaced as nil/false so the scan loop can keep going; they are never
// propagated as errors to its callers.
type Database struct {
	store  *bolthold.Store
	logger *logrus.Logger
}

// NewDatabase creates a new database connection
func NewDatabase(path string, logger *logrus.Logger) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store, logger: logger}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Ping verifies the store file is still readable
func (db *Database) Ping() error {
	return db.store.Bolt().View(func(tx *bbolt.Tx) error {
		return nil
	})
}

// Movie operations

// UpsertMovie inserts or updates the catalog entry for a source message.
// The lookup and write happen in one transaction so the same message id
// can never produce two rows. Returns nil when the write failed.
func (db *Database) UpsertMovie(messageID int64, fields MovieFields) *Movie {
	var movie Movie
	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		err := db.store.TxFindOne(tx, &movie, bolthold.Where("MessageID").Eq(messageID))
		if err == bolthold.ErrNotFound {
			movie = Movie{
				MessageID: messageID,
				CreatedAt: time.Now(),
			}
			fields.apply(&movie)
			movie.UpdatedAt = time.Now()
			return db.store.TxInsert(tx, bolthold.NextSequence(), &movie)
		}
		if err != nil {
			return err
		}
		fields.apply(&movie)
		movie.UpdatedAt = time.Now()
		return db.store.TxUpdate(tx, movie.ID, &movie)
	})
	if err != nil {
		db.logger.WithError(err).WithField("message_id", messageID).Error("Failed to upsert movie")
		return nil
	}
	return &movie
}

// GetMovieByMessageID retrieves a movie by its source message id
func (db *Database) GetMovieByMessageID(messageID int64) *Movie {
	var movie Movie
	err := db.store.FindOne(&movie, bolthold.Where("MessageID").Eq(messageID))
	if err != nil {
		if err != bolthold.ErrNotFound {
			db.logger.WithError(err).Error("Failed to look up movie")
		}
		return nil
	}
	return &movie
}

// SearchMovies does an accent-insensitive substring search over titles
func (db *Database) SearchMovies(query string, limit int) []*Movie {
	var movies []*Movie
	if err := db.store.Find(&movies, nil); err != nil {
		db.logger.WithError(err).Error("Failed to list movies")
		return nil
	}

	normalized := normalizeText(query)
	var matches []*Movie
	for _, movie := range movies {
		if strings.Contains(normalizeText(movie.Title), normalized) ||
			strings.Contains(normalizeText(movie.OriginalTitle), normalized) {
			matches = append(matches, movie)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// CountMovies returns the number of catalog movies
func (db *Database) CountMovies() int {
	count, err := db.store.Count(&Movie{}, nil)
	if err != nil {
		return 0
	}
	return count
}

// Show operations

// GetOrCreateShow ensures one show row per TMDB id. An existing row is
// returned unchanged. Returns nil when the write failed.
func (db *Database) GetOrCreateShow(tmdbID int64, fields ShowFields) *Show {
	var show Show
	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		err := db.store.TxFindOne(tx, &show, bolthold.Where("TMDBID").Eq(tmdbID))
		if err == bolthold.ErrNotFound {
			show = Show{
				TMDBID:    tmdbID,
				CreatedAt: time.Now(),
			}
			fields.apply(&show)
			show.UpdatedAt = time.Now()
			return db.store.TxInsert(tx, bolthold.NextSequence(), &show)
		}
		return err
	})
	if err != nil {
		db.logger.WithError(err).WithField("tmdb_id", tmdbID).Error("Failed to get or create show")
		return nil
	}
	return &show
}

// GetShowByID retrieves a show by its internal id
func (db *Database) GetShowByID(id uint64) *Show {
	var show Show
	if err := db.store.Get(id, &show); err != nil {
		if err != bolthold.ErrNotFound {
			db.logger.WithError(err).Error("Failed to look up show")
		}
		return nil
	}
	return &show
}

// DeleteShow removes a show and cascades to its episodes
func (db *Database) DeleteShow(id uint64) bool {
	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := db.store.TxDeleteMatching(tx, &Episode{}, bolthold.Where("ShowID").Eq(id)); err != nil {
			return err
		}
		return db.store.TxDelete(tx, id, &Show{})
	})
	if err != nil {
		db.logger.WithError(err).WithField("show_id", id).Error("Failed to delete show")
		return false
	}
	return true
}

// CountShows returns the number of catalog shows
func (db *Database) CountShows() int {
	count, err := db.store.Count(&Show{}, nil)
	if err != nil {
		return 0
	}
	return count
}

// Episode operations

// UpsertEpisode inserts or updates the episode row for the given
// (show, season, episode) tuple. A later source message for an existing
// tuple overwrites the row in place, including its MessageID.
// Returns nil when the write failed.
func (db *Database) UpsertEpisode(showID uint64, season, episode int, fields EpisodeFields) *Episode {
	var ep Episode
	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		err := db.store.TxFindOne(tx, &ep, bolthold.
			Where("ShowID").Eq(showID).
			And("SeasonNumber").Eq(season).
			And("EpisodeNumber").Eq(episode))
		if err == bolthold.ErrNotFound {
			ep = Episode{
				ShowID:        showID,
				SeasonNumber:  season,
				EpisodeNumber: episode,
				CreatedAt:     time.Now(),
			}
			fields.apply(&ep)
			ep.UpdatedAt = time.Now()
			return db.store.TxInsert(tx, bolthold.NextSequence(), &ep)
		}
		if err != nil {
			return err
		}
		fields.apply(&ep)
		ep.UpdatedAt = time.Now()
		return db.store.TxUpdate(tx, ep.ID, &ep)
	})
	if err != nil {
		db.logger.WithError(err).WithFields(logrus.Fields{
			"show_id": showID,
			"season":  season,
			"episode": episode,
		}).Error("Failed to upsert episode")
		return nil
	}
	return &ep
}

// GetEpisodeByMessageID retrieves an episode by its source message id
func (db *Database) GetEpisodeByMessageID(messageID int64) *Episode {
	var ep Episode
	err := db.store.FindOne(&ep, bolthold.Where("MessageID").Eq(messageID))
	if err != nil {
		if err != bolthold.ErrNotFound {
			db.logger.WithError(err).Error("Failed to look up episode")
		}
		return nil
	}
	return &ep
}

// GetEpisodesBySeason lists a show's episodes for one season
func (db *Database) GetEpisodesBySeason(showID uint64, season int) []*Episode {
	var episodes []*Episode
	err := db.store.Find(&episodes, bolthold.
		Where("ShowID").Eq(showID).
		And("SeasonNumber").Eq(season))
	if err != nil {
		db.logger.WithError(err).Error("Failed to list episodes")
		return nil
	}
	return episodes
}

// CountEpisodes returns the number of catalog episodes
func (db *Database) CountEpisodes() int {
	count, err := db.store.Count(&Episode{}, nil)
	if err != nil {
		return 0
	}
	return count
}

// Checkpoint operations

// GetCheckpoint returns the highest fully processed source message id,
// or 0 when nothing has been indexed yet.
func (db *Database) GetCheckpoint() int64 {
	var entry ConfigEntry
	err := db.store.Get(checkpointKey, &entry)
	if err != nil {
		if err != bolthold.ErrNotFound {
			db.logger.WithError(err).Error("Failed to read checkpoint")
		}
		return 0
	}
	value, err := strconv.ParseInt(entry.Value, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// SetCheckpoint stores the scan checkpoint, last write wins
func (db *Database) SetCheckpoint(messageID int64) bool {
	entry := ConfigEntry{Key: checkpointKey, Value: strconv.FormatInt(messageID, 10)}
	if err := db.store.Upsert(checkpointKey, &entry); err != nil {
		db.logger.WithError(err).Error("Failed to write checkpoint")
		return false
	}
	return true
}

// normalizeText lowercases and strips the accents that show up in
// Spanish-language titles, so "Capitán" matches "capitan".
func normalizeText(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'á', 'à', 'â', 'ä':
			return 'a'
		case 'é', 'è', 'ê', 'ë':
			return 'e'
		case 'í', 'ì', 'î', 'ï':
			return 'i'
		case 'ó', 'ò', 'ô', 'ö':
			return 'o'
		case 'ú', 'ù', 'û', 'ü':
			return 'u'
		case 'ñ':
			return 'n'
		}
		return r
	}, strings.ToLower(s))
}
