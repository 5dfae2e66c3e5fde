package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/Dosada05/cup-simulator/models"
	"github.com/Dosada05/cup-simulator/repositories"
	"github.com/Dosada05/cup-simulator/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// ListMatches поддерживает фильтры ?round=semifinal&status=completed&team=3.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SimulateMatch играет матч быстро: только счёт и авторы голов.
func (h *MatchHandler) SimulateMatch(w http.ResponseWriter, r *http.Request) {
	h.simulate(w, r, models.ModeQuick)
}

// PlayMatch играет матч полностью, с хронологией и комментарием.
func (h *MatchHandler) PlayMatch(w http.ResponseWriter, r *http.Request) {
	h.simulate(w, r, models.ModeFull)
}

func (h *MatchHandler) simulate(w http.ResponseWriter, r *http.Request, mode models.SimulationMode) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update, err := h.matchService.SimulateMatch(r.Context(), matchID, mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match": update.Match,
		"stage": update.Stage,
	}
	if len(update.NextRound) > 0 {
		response["next_round"] = update.NextRound
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) MatchPreview(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	regenerate := false
	if raw := r.URL.Query().Get("regenerate"); raw != "" {
		regenerate, err = strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid regenerate value: %q", raw))
			return
		}
	}

	preview, err := h.matchService.Preview(r.Context(), matchID, regenerate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, preview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) PlayerAnalysis(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playerName, err := getStringFromURL(r, "playerName")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	analysis, err := h.matchService.PlayerAnalysis(r.Context(), matchID, playerName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, analysis, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseMatchFilter(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	q := r.URL.Query()

	if raw := q.Get("round"); raw != "" {
		round := models.Round(raw)
		if !slices.Contains(models.Rounds, round) {
			return filter, fmt.Errorf("invalid round: %q", raw)
		}
		filter.Round = &round
	}

	if raw := q.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if status != models.MatchStatusScheduled && status != models.MatchStatusCompleted {
			return filter, fmt.Errorf("invalid status: %q", raw)
		}
		filter.Status = &status
	}

	if raw := q.Get("team"); raw != "" {
		teamID, err := strconv.Atoi(raw)
		if err != nil || teamID <= 0 {
			return filter, errors.New("team must be a positive integer id")
		}
		filter.TeamID = &teamID
	}

	return filter, nil
}
