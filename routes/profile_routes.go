package routes

import (
	"sportspal_server/controllers"
	"sportspal_server/services"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterProfileRoutes(r *mux.Router, profileService *services.ProfileService) {
	controller := controllers.NewProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.HandleAddProfile).Methods("POST")
	profileRouter.HandleFunc("/search", controller.HandleSearchProfiles).Methods("GET")
	profileRouter.HandleFunc("/friend-request", controller.HandleFriendRequest).Methods("POST")
	profileRouter.HandleFunc("/push-token", controller.HandleRegisterPushToken).Methods("POST")
	profileRouter.HandleFunc("/block", controller.HandleBlock).Methods("POST")
	profileRouter.HandleFunc("/{uid}", controller.HandleGetProfile).Methods("GET")
}
