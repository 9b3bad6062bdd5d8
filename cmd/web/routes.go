package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		open = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.timeout(next))))
		}
		mustAuth = func(next http.Handler) http.Handler {
			return open(app.mustAuthorize(next))
		}
	)

	mux.Handle("GET /api/healthy", open(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/fitness", open(http.HandlerFunc(app.fitnessGET)))
	mux.Handle("GET /api/projection", open(http.HandlerFunc(app.projectionGET)))
	mux.Handle("POST /api/projection", open(http.HandlerFunc(app.projectionPOST)))
	mux.Handle("GET /api/impact", open(http.HandlerFunc(app.impactGET)))
	mux.Handle("GET /api/recommendation", open(http.HandlerFunc(app.recommendationGET)))
	mux.Handle("GET /api/progression", open(http.HandlerFunc(app.progressionGET)))
	mux.Handle("GET /api/phase", open(http.HandlerFunc(app.phaseGET)))
	mux.Handle("GET /api/profile", open(http.HandlerFunc(app.profileGET)))
	mux.Handle("GET /api/workouts", open(http.HandlerFunc(app.workoutsGET)))
	mux.Handle("GET /api/workouts/{id}", open(http.HandlerFunc(app.workoutDetailGET)))
	mux.Handle("GET /api/events", open(http.HandlerFunc(app.eventsGET)))

	mux.Handle("POST /api/sync", mustAuth(http.HandlerFunc(app.syncPOST)))
	mux.Handle("POST /api/profile", mustAuth(http.HandlerFunc(app.profilePOST)))
	mux.Handle("POST /api/events", mustAuth(http.HandlerFunc(app.eventPOST)))
	mux.Handle("DELETE /api/events/{id}", mustAuth(http.HandlerFunc(app.eventDELETE)))
	mux.Handle("POST /api/export", mustAuth(http.HandlerFunc(app.exportPOST)))

	mux.Handle("/", open(http.HandlerFunc(app.notFound)))

	return mux
}
