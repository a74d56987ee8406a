package routes

import (
	"sportspal_server/controllers"
	"sportspal_server/services"

	"github.com/gorilla/mux"
)

// RegisterAccountRoutes sets up routes for account lifecycle operations
func RegisterAccountRoutes(r *mux.Router, accountService *services.AccountService) {
	controller := controllers.NewAccountController(accountService)

	accountRouter := r.PathPrefix("/api/account").Subrouter()

	accountRouter.HandleFunc("/delete", controller.HandleDeleteAccount).Methods("POST")
}
