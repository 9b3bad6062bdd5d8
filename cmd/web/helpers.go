package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/formcoach/internal/coach"
	"github.com/myrjola/formcoach/internal/errors"
)

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal server error"}`))
}

func (app *application) clientError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := json.Marshal(map[string]string{"error": message})
	_, _ = w.Write(body)
}

// respondServiceError maps precondition failures to 400s and everything else
// to a logged 500.
func (app *application) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coach.ErrInvalidInput):
		app.clientError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, coach.ErrNotFound):
		app.clientError(w, http.StatusNotFound, "not found")
	default:
		app.serverError(w, r, err)
	}
}

// dateQuery parses an optional date query parameter, defaulting to today.
func (app *application) dateQuery(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Now(), true
	}
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		app.clientError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}
