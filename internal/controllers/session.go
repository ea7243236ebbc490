package controllers

import (
	"strconv"
	"time"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/cinestelar/cinarr/internal/services/tmdb"
	"github.com/patrickmn/go-cache"
)

// Session tracks one operator's interactive indexing run. A session is
// keyed by the operator id; only one run per operator exists at a time.
type Session struct {
	OperatorID       int64
	State            models.SessionState
	CurrentMessageID int64
	Current          *ReviewItem
	Candidates       []tmdb.Candidate
	Indexed          int
	Skipped          int
	Errors           int
	CreatedAt        time.Time
	LastActivity     time.Time
}

// SessionStore holds interactive sessions between updates
type SessionStore interface {
	Get(operatorID int64) *Session
	Put(session *Session)
	Delete(operatorID int64)
}

// CacheSessionStore keeps sessions in an expiring in-memory cache.
// Expiry is enforced on read as well, so a stale entry the janitor has
// not swept yet is still replaced by a fresh idle session.
type CacheSessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCacheSessionStore creates a session store with the given idle TTL
func NewCacheSessionStore(ttl time.Duration) *CacheSessionStore {
	return &CacheSessionStore{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the operator's session, creating an idle one if none
// exists or the stored one has gone stale.
func (s *CacheSessionStore) Get(operatorID int64) *Session {
	if v, ok := s.cache.Get(sessionKey(operatorID)); ok {
		session := v.(*Session)
		if s.now().Sub(session.LastActivity) < s.ttl {
			return session
		}
	}
	session := &Session{
		OperatorID:   operatorID,
		State:        models.SessionIdle,
		CreatedAt:    s.now(),
		LastActivity: s.now(),
	}
	s.cache.Set(sessionKey(operatorID), session, cache.DefaultExpiration)
	return session
}

// Put stores the session and refreshes its activity timestamp
func (s *CacheSessionStore) Put(session *Session) {
	session.LastActivity = s.now()
	s.cache.Set(sessionKey(session.OperatorID), session, cache.DefaultExpiration)
}

// Delete removes the operator's session
func (s *CacheSessionStore) Delete(operatorID int64) {
	s.cache.Delete(sessionKey(operatorID))
}

func sessionKey(operatorID int64) string {
	return strconv.FormatInt(operatorID, 10)
}
