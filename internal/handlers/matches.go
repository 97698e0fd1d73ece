package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

type createMatchRequest struct {
	TournamentID string    `json:"tournament_id"`
	TeamAID      string    `json:"team_a_id"`
	TeamBID      string    `json:"team_b_id"`
	Venue        string    `json:"venue"`
	Format       string    `json:"format"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

// CreateMatch schedules a match. The zeroed score record is created in
// the same transaction, so a score exists for every match from day one.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid match payload", err)
		return
	}
	if req.TeamAID == "" || req.TeamBID == "" {
		respondError(w, http.StatusBadRequest, "team_a_id and team_b_id are required", nil)
		return
	}
	if req.Format != "" {
		if _, ok := h.formats.Get(req.Format); !ok {
			respondError(w, http.StatusBadRequest, "unknown match format", nil)
			return
		}
	}

	match := &models.Match{
		ID:           uuid.New().String(),
		TournamentID: req.TournamentID,
		TeamAID:      req.TeamAID,
		TeamBID:      req.TeamBID,
		Venue:        req.Venue,
		Format:       req.Format,
		Status:       models.StatusUpcoming,
		ScheduledAt:  req.ScheduledAt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.store.CreateMatch(r.Context(), match); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create match", err)
		return
	}

	respondJSON(w, http.StatusCreated, match)
}

// GetMatch retrieves a single match by ID
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	match, err := h.store.GetMatch(r.Context(), matchID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// ListMatches retrieves matches, optionally filtered by tournament
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.URL.Query().Get("tournament_id")

	matches, err := h.store.ListMatches(r.Context(), tournamentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

type updateStatusRequest struct {
	Status models.MatchStatus `json:"status"`
}

// UpdateMatchStatus moves a match along upcoming -> live -> completed.
// Completion re-expires the cached snapshot on the final TTL.
func (h *Handler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid status payload", err)
		return
	}
	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown status", nil)
		return
	}

	match, err := h.store.GetMatch(r.Context(), matchID)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}

	if !match.Status.CanTransitionTo(req.Status) {
		respondError(w, http.StatusConflict, "invalid status transition", nil)
		return
	}

	if err := h.store.UpdateMatchStatus(r.Context(), matchID, req.Status); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update status", err)
		return
	}

	if req.Status == models.StatusCompleted && h.cache != nil {
		h.cache.MarkFinal(r.Context(), matchID)
	}

	match.Status = req.Status
	respondJSON(w, http.StatusOK, match)
}

type createTeamRequest struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// CreateTeam registers a team
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid team payload", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	team := &models.Team{
		ID:        uuid.New().String(),
		Name:      req.Name,
		ShortName: req.ShortName,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateTeam(r.Context(), team); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create team", err)
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

// ListTeams returns all teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.store.ListTeams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}

type createTournamentRequest struct {
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CreateTournament registers a tournament
func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid tournament payload", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	t := &models.Tournament{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateTournament(r.Context(), t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create tournament", err)
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// GetTournament retrieves a tournament by ID
func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")

	t, err := h.store.GetTournament(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "tournament not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve tournament", err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// ListTournaments returns all tournaments
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ts, err := h.store.ListTournaments(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve tournaments", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tournaments": ts,
		"count":       len(ts),
	})
}
