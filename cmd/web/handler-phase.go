package main

import (
	"net/http"
)

type phaseResponse struct {
	Phase         string  `json:"phase"`
	WeeksToTarget int     `json:"weeks_to_target"`
	Focus         string  `json:"focus"`
	Reasoning     string  `json:"reasoning,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
}

func (app *application) phaseGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}

	state, err := app.coach.Phase(r.Context(), date)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, phaseResponse{
		Phase:         string(state.Name),
		WeeksToTarget: state.WeeksToTarget,
		Focus:         state.Focus,
		Reasoning:     state.Reasoning,
		Confidence:    state.Confidence,
	})
}
