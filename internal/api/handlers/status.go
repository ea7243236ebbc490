package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Movies     int   `json:"movies"`
	Shows      int   `json:"shows"`
	Episodes   int   `json:"episodes"`
	Checkpoint int64 `json:"checkpoint"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := StatusResponse{
		Movies:     h.db.CountMovies(),
		Shows:      h.db.CountShows(),
		Episodes:   h.db.CountEpisodes(),
		Checkpoint: h.db.GetCheckpoint(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
