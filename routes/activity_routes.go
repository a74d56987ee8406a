package routes

import (
	"sportspal_server/controllers"
	"sportspal_server/services"

	"github.com/gorilla/mux"
)

// RegisterActivityRoutes sets up routes for activity operations under /api/activities
func RegisterActivityRoutes(r *mux.Router, activityService *services.ActivityService, manager *services.SyncManager) {
	controller := controllers.NewActivityController(activityService, manager)

	activityRouter := r.PathPrefix("/api/activities").Subrouter()

	activityRouter.HandleFunc("", controller.HandleListActivities).Methods("GET")
	activityRouter.HandleFunc("", controller.HandleCreateActivity).Methods("POST")
	activityRouter.HandleFunc("/toggle-join", controller.HandleToggleJoin).Methods("POST")
	activityRouter.HandleFunc("/{activityId}", controller.HandleDeleteActivity).Methods("DELETE")
	activityRouter.HandleFunc("/blocked-users", controller.HandleBlockedUsers).Methods("GET")

	sessionRouter := r.PathPrefix("/api/session").Subrouter()
	sessionRouter.HandleFunc("/start", controller.HandleStartSession).Methods("POST")
	sessionRouter.HandleFunc("/end", controller.HandleEndSession).Methods("POST")
}
