package main

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/myrjola/formcoach/internal/errors"
	"github.com/yuin/goldmark"
)

type workoutSummaryJSON struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Stimulus           string   `json:"stimulus"`
	Intensity          int      `json:"intensity"`
	DurationMinMinutes int      `json:"duration_min_minutes"`
	DurationMaxMinutes int      `json:"duration_max_minutes"`
	Phases             []string `json:"phases"`
}

func (app *application) workoutsGET(w http.ResponseWriter, r *http.Request) {
	entries := app.coach.Catalog().Entries()
	response := make([]workoutSummaryJSON, 0, len(entries))
	for _, entry := range entries {
		response = append(response, workoutSummaryJSON{
			ID:                 entry.ID,
			Name:               entry.Name,
			Stimulus:           entry.Stimulus,
			Intensity:          entry.Intensity,
			DurationMinMinutes: entry.DurationMinMinutes,
			DurationMaxMinutes: entry.DurationMaxMinutes,
			Phases:             entry.Phases,
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

type workoutDetailJSON struct {
	workoutSummaryJSON
	MinRecovery     string `json:"min_recovery"`
	DescriptionHTML string `json:"description_html"`
}

func (app *application) workoutDetailGET(w http.ResponseWriter, r *http.Request) {
	entry, ok := app.coach.Catalog().Get(r.PathValue("id"))
	if !ok {
		app.clientError(w, http.StatusNotFound, "unknown workout")
		return
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(entry.DescriptionMarkdown), &buf); err != nil {
		app.serverError(w, r, errors.Wrap(err, "render workout description"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, workoutDetailJSON{
		workoutSummaryJSON: workoutSummaryJSON{
			ID:                 entry.ID,
			Name:               entry.Name,
			Stimulus:           entry.Stimulus,
			Intensity:          entry.Intensity,
			DurationMinMinutes: entry.DurationMinMinutes,
			DurationMaxMinutes: entry.DurationMaxMinutes,
			Phases:             entry.Phases,
		},
		MinRecovery:     string(entry.MinRecovery),
		DescriptionHTML: strings.TrimSpace(buf.String()),
	})
}
