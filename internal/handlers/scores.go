package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/scoring"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// GetScore returns the current score for a match, serving the cached
// snapshot when present and falling back to the authoritative store.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required", nil)
		return
	}

	if h.cache != nil {
		if score, err := h.cache.ReadScore(r.Context(), matchID); err == nil {
			respondJSON(w, http.StatusOK, score)
			return
		}
	}

	score, created, err := h.scores.LoadOrCreate(r.Context(), matchID)
	if errors.Is(err, scoring.ErrNoActiveMatch) {
		respondError(w, http.StatusNotFound, "no active match", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load score", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, score)
}

// RecordBall applies one delivery to the match and returns the updated
// score. The currently designated batting side's figures are updated.
func (h *Handler) RecordBall(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required", nil)
		return
	}

	var input models.BallInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid ball payload", err)
		return
	}

	score, err := h.scores.RecordBall(r.Context(), matchID, input)
	switch {
	case errors.Is(err, scoring.ErrNoActiveMatch):
		respondError(w, http.StatusNotFound, "no active match", nil)
		return
	case errors.Is(err, scoring.ErrMatchNotLive):
		respondError(w, http.StatusConflict, "match is not live", nil)
		return
	case errors.Is(err, scoring.ErrPersistence):
		respondError(w, http.StatusServiceUnavailable, "score write failed, retry", err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":        score,
		"current_over": h.scores.CurrentOver(matchID),
	})
}

// UndoLastBall reverses the most recent delivery.
func (h *Handler) UndoLastBall(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required", nil)
		return
	}

	score, err := h.scores.UndoLastBall(r.Context(), matchID)
	switch {
	case errors.Is(err, scoring.ErrNothingToUndo):
		respondError(w, http.StatusConflict, "nothing to undo", nil)
		return
	case errors.Is(err, scoring.ErrPersistence):
		respondError(w, http.StatusServiceUnavailable, "score write failed, retry", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "undo failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"score":        score,
		"current_over": h.scores.CurrentOver(matchID),
	})
}

// EndOver acknowledges the over boundary, clearing the working set.
func (h *Handler) EndOver(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required", nil)
		return
	}

	h.scores.EndOver(matchID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"current_over": []string{},
	})
}
