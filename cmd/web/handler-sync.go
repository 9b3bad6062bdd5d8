package main

import (
	"net/http"
)

// syncPOST pulls fresh athlete data from the provider.
func (app *application) syncPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.coach.Sync(r.Context()); err != nil {
		app.respondServiceError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "synced"})
}
