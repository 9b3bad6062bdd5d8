package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/formcoach/internal/coach"
)

const defaultProjectionDays = 14

type projectionPointJSON struct {
	Date  string  `json:"date"`
	Long  float64 `json:"fitness"`
	Short float64 `json:"fatigue"`
	Form  float64 `json:"form"`
}

type projectionResponse struct {
	HorizonDays int                   `json:"horizon_days"`
	Points      []projectionPointJSON `json:"points"`
}

func projectionJSON(points []coach.ProjectionPoint) []projectionPointJSON {
	converted := make([]projectionPointJSON, len(points))
	for i, point := range points {
		converted[i] = projectionPointJSON{
			Date:  point.Date.Format(time.DateOnly),
			Long:  point.Long,
			Short: point.Short,
			Form:  point.Form,
		}
	}
	return converted
}

// projectionGET projects forward with an all-rest forecast.
func (app *application) projectionGET(w http.ResponseWriter, r *http.Request) {
	horizonDays := defaultProjectionDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		var err error
		if horizonDays, err = strconv.Atoi(daysStr); err != nil {
			app.clientError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
	}

	points, err := app.coach.Projection(r.Context(), time.Now(), horizonDays, nil)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, projectionResponse{HorizonDays: horizonDays, Points: projectionJSON(points)})
}

type projectionRequest struct {
	HorizonDays int `json:"horizon_days"`
	Planned     []struct {
		Date string  `json:"date"`
		Load float64 `json:"load"`
	} `json:"planned"`
}

// projectionPOST projects forward over a caller-supplied load forecast.
func (app *application) projectionPOST(w http.ResponseWriter, r *http.Request) {
	var request projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		app.clientError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	planned := make([]coach.PlannedLoad, 0, len(request.Planned))
	for _, day := range request.Planned {
		date, err := time.Parse(time.DateOnly, day.Date)
		if err != nil {
			app.clientError(w, http.StatusBadRequest, "planned dates must be YYYY-MM-DD")
			return
		}
		planned = append(planned, coach.PlannedLoad{Date: date, Load: day.Load})
	}

	points, err := app.coach.Projection(r.Context(), time.Now(), request.HorizonDays, planned)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, projectionResponse{
		HorizonDays: request.HorizonDays,
		Points:      projectionJSON(points),
	})
}
