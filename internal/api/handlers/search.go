package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultSearchLimit = 20

// SearchHandler handles catalog search requests
type SearchHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(db *models.Database, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		db:     db,
		logger: logger,
	}
}

// SearchResult is one catalog hit
type SearchResult struct {
	MessageID int64   `json:"message_id"`
	Title     string  `json:"title"`
	Year      int     `json:"year,omitempty"`
	TMDBID    int64   `json:"tmdb_id,omitempty"`
	VoteAvg   float64 `json:"vote_average,omitempty"`
}

// ServeHTTP handles the search endpoint
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query parameter 'q'", http.StatusBadRequest)
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results := []SearchResult{}
	for _, movie := range h.db.SearchMovies(query, limit) {
		results = append(results, SearchResult{
			MessageID: movie.MessageID,
			Title:     movie.Title,
			Year:      movie.Year,
			TMDBID:    movie.TMDBID,
			VoteAvg:   movie.VoteAverage,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
