package main

import (
	"net/http"
	"time"
)

type fitnessResponse struct {
	Date  string  `json:"date"`
	Long  float64 `json:"fitness"`
	Short float64 `json:"fatigue"`
	Form  float64 `json:"form"`
}

func (app *application) fitnessGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}

	state, err := app.coach.FitnessState(r.Context(), date)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, fitnessResponse{
		Date:  state.Date.Format(time.DateOnly),
		Long:  state.Long,
		Short: state.Short,
		Form:  state.Form,
	})
}
