package handlers

import (
	"net/http"

	"github.com/Dosada05/cup-simulator/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(as services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as}
}

func (h *AnalyticsHandler) TeamAnalytics(w http.ResponseWriter, r *http.Request) {
	country, err := getStringFromURL(r, "country")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	analytics, err := h.analyticsService.TeamAnalytics(r.Context(), country)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, analytics, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings отдаёт таблицу бомбардиров по всем сыгранным матчам.
func (h *AnalyticsHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.analyticsService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
