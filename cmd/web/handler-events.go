package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/formcoach/internal/coach"
)

type eventJSON struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

func (app *application) eventsGET(w http.ResponseWriter, r *http.Request) {
	events, err := app.coach.Events(r.Context())
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	response := make([]eventJSON, 0, len(events))
	for _, event := range events {
		response = append(response, eventJSON{
			ID:          event.ID,
			Date:        event.Date.Format(time.DateOnly),
			Priority:    event.Priority,
			Description: event.Description,
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

type eventRequest struct {
	Date        string `json:"date"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

func (app *application) eventPOST(w http.ResponseWriter, r *http.Request) {
	var request eventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		app.clientError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	date, err := time.Parse(time.DateOnly, request.Date)
	if err != nil {
		app.clientError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	event, err := app.coach.AddEvent(r.Context(), coach.Event{
		Date:        date,
		Priority:    request.Priority,
		Description: request.Description,
	})
	if err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, eventJSON{
		ID:          event.ID,
		Date:        event.Date.Format(time.DateOnly),
		Priority:    event.Priority,
		Description: event.Description,
	})
}

func (app *application) eventDELETE(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		app.clientError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	if err = app.coach.RemoveEvent(r.Context(), id); err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
