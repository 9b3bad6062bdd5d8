package main

import (
	"net/http"
	"strconv"
	"time"
)

type impactResponse struct {
	With      []projectionPointJSON `json:"with_session"`
	Without   []projectionPointJSON `json:"without_session"`
	FormDelta float64               `json:"form_delta"`
}

// impactGET compares projections with and without a planned session.
func (app *application) impactGET(w http.ResponseWriter, r *http.Request) {
	load, err := strconv.ParseFloat(r.URL.Query().Get("load"), 64)
	if err != nil {
		app.clientError(w, http.StatusBadRequest, "load must be a number")
		return
	}
	horizonDays := defaultProjectionDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if horizonDays, err = strconv.Atoi(daysStr); err != nil {
			app.clientError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
	}

	impact, err := app.coach.Impact(r.Context(), time.Now(), horizonDays, load)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, impactResponse{
		With:      projectionJSON(impact.With),
		Without:   projectionJSON(impact.Without),
		FormDelta: impact.FormDelta,
	})
}
