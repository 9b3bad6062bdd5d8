package main

import (
	"encoding/json"
	"net/http"
)

type profileResponse struct {
	WeightKg             float64 `json:"weight_kg"`
	ManualThresholdWatts int     `json:"manual_threshold_watts"`
	ThresholdWatts       int     `json:"threshold_watts"`
	SeasonBestThresholdW int     `json:"season_best_threshold_watts"`
	AnaerobicCapacityJ   int     `json:"anaerobic_capacity_joules"`
	MaxPowerWatts        int     `json:"max_power_watts"`
	ThresholdMethod      string  `json:"threshold_method"`
}

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	profile, err := app.coach.Profile(r.Context())
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profileResponse{
		WeightKg:             profile.WeightKg,
		ManualThresholdWatts: profile.ManualThresholdWatts,
		ThresholdWatts:       profile.ThresholdWatts,
		SeasonBestThresholdW: profile.SeasonBestThresholdW,
		AnaerobicCapacityJ:   profile.AnaerobicCapacityJ,
		MaxPowerWatts:        profile.MaxPowerWatts,
		ThresholdMethod:      profile.ThresholdMethod,
	})
}

type profileRequest struct {
	WeightKg             float64 `json:"weight_kg"`
	ManualThresholdWatts int     `json:"manual_threshold_watts"`
}

func (app *application) profilePOST(w http.ResponseWriter, r *http.Request) {
	var request profileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		app.clientError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := app.coach.UpdateProfile(r.Context(), request.WeightKg, request.ManualThresholdWatts); err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.profileGET(w, r)
}
