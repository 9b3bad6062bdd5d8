package main

import (
	"net/http"
	"time"
)

type alternateJSON struct {
	TypeID    string `json:"type_id"`
	Intensity int    `json:"intensity"`
	Rationale string `json:"rationale,omitempty"`
}

type recommendationResponse struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"`
	TypeID           string          `json:"type_id"`
	Name             string          `json:"name"`
	Intensity        int             `json:"intensity"`
	IntensityCeiling int             `json:"intensity_ceiling"`
	Source           string          `json:"source"`
	Justification    []string        `json:"justification"`
	Alternates       []alternateJSON `json:"alternates"`
}

// recommendationGET returns the workout decision for the date, resolving a
// fresh one when none is stored.
func (app *application) recommendationGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.dateQuery(w, r)
	if !ok {
		return
	}

	recommendation, err := app.coach.RecommendationForDate(r.Context(), date)
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}

	name := recommendation.TypeID
	if entry, found := app.coach.Catalog().Get(recommendation.TypeID); found {
		name = entry.Name
	}
	alternates := make([]alternateJSON, 0, len(recommendation.Alternates))
	for _, alternate := range recommendation.Alternates {
		alternates = append(alternates, alternateJSON{
			TypeID:    alternate.TypeID,
			Intensity: alternate.Intensity,
			Rationale: alternate.Rationale,
		})
	}

	app.writeJSON(w, r, http.StatusOK, recommendationResponse{
		ID:               recommendation.ID,
		Date:             recommendation.ForDate.Format(time.DateOnly),
		TypeID:           recommendation.TypeID,
		Name:             name,
		Intensity:        recommendation.Intensity,
		IntensityCeiling: recommendation.IntensityCeiling,
		Source:           string(recommendation.Source),
		Justification:    recommendation.Justification,
		Alternates:       alternates,
	})
}
