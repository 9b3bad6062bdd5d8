package main

import (
	"net/http"

	"github.com/myrjola/formcoach/internal/errors"
)

// exportPOST writes a consistent snapshot of the database for backups.
func (app *application) exportPOST(w http.ResponseWriter, r *http.Request) {
	path, err := app.db.Export(r.Context(), app.exportDir)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "export database"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"path": path})
}
