package stats

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/db/repository"
	httperrors "github.com/gokatarajesh/quizflow/pkg/http/errors"
)

const (
	defaultSnapshotLimit = 10
	maxSnapshotLimit     = 100
)

// Snapshot is a persisted point-in-time Summary.
type Snapshot struct {
	Started     int64            `json:"started"`
	Completed   int64            `json:"completed"`
	Endings     map[string]int64 `json:"endings"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// HTTPHandler exposes REST endpoints for quiz stats.
type HTTPHandler struct {
	svc    *Service
	repo   *repository.StatsRepository
	logger zerolog.Logger
}

// NewHTTPHandler constructs a stats HTTP handler. repo may be nil, in which
// case only live counters are served.
func NewHTTPHandler(svc *Service, repo *repository.StatsRepository, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		repo:   repo,
		logger: logger.With().Str("component", "stats_http").Logger(),
	}
}

// Routes registers the stats endpoint on an author-guarded router.
func (h *HTTPHandler) Routes(r *mux.Router) {
	r.HandleFunc("/v1/quizzes/{id}/stats", h.HandleGet).Methods(http.MethodGet)
}

// HandleGet responds with live counters and recent snapshots.
// Route: GET /v1/quizzes/{id}/stats?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidQuizID, "Invalid quiz ID")
		return
	}

	limit := defaultSnapshotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxSnapshotLimit {
			limit = parsed
		}
	}

	ctx := r.Context()
	summary, err := h.svc.Summary(ctx, quizID)
	if err != nil {
		h.logger.Error().Err(err).Str("quiz_id", quizID.String()).Msg("stats fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeStatsFetchFailed, "Failed to fetch stats")
		return
	}

	snapshots := make([]Snapshot, 0)
	if h.repo != nil {
		rows, err := h.repo.ListSnapshots(ctx, quizID, int32(limit))
		if err != nil {
			h.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("snapshot fetch failed")
		}
		for _, row := range rows {
			snap := Snapshot{
				Started:     row.Started,
				Completed:   row.Completed,
				Endings:     map[string]int64{},
				GeneratedAt: row.GeneratedAt.Time,
			}
			if len(row.Endings) > 0 {
				if err := json.Unmarshal(row.Endings, &snap.Endings); err != nil {
					h.logger.Warn().Err(err).Int64("snapshot_id", row.ID).Msg("malformed snapshot endings")
				}
			}
			snapshots = append(snapshots, snap)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary":   summary,
		"snapshots": snapshots,
	})
}
