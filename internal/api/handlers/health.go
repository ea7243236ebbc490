package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cinestelar/cinarr/internal/models"
	"github.com/sirupsen/logrus"
)

// HealthHandler reports liveness and whether the catalog store is
// still reachable
type HealthHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *models.Database, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// ServeHTTP handles the health check endpoint
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:   "healthy",
		Service:  "cinarr",
		Database: "ok",
	}

	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		h.logger.WithError(err).Error("Catalog store unreachable")
		response.Status = "degraded"
		response.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}
