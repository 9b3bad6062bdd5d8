package main

import (
	"net/http"
	"time"
)

type progressionJSON struct {
	Category    string  `json:"category"`
	Level       float64 `json:"level"`
	Trend       string  `json:"trend"`
	LastTrained string  `json:"last_trained,omitempty"`
	Sessions    int     `json:"sessions"`
	AvgLoad     float64 `json:"avg_load"`
}

func (app *application) progressionGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}

	progressions, err := app.coach.Progression(r.Context(), date)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}

	response := make([]progressionJSON, 0, len(progressions))
	for _, progression := range progressions {
		converted := progressionJSON{
			Category: string(progression.Category),
			Level:    progression.Level,
			Trend:    string(progression.Trend),
			Sessions: progression.Sessions,
			AvgLoad:  progression.AvgLoad,
		}
		if !progression.LastTrained.IsZero() {
			converted.LastTrained = progression.LastTrained.Format(time.DateOnly)
		}
		response = append(response, converted)
	}
	app.writeJSON(w, r, http.StatusOK, response)
}
