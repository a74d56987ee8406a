package routes

import (
	"sportspal_server/controllers"
	"sportspal_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/messages/older", controller.HandleGetOlderMessages).Methods("GET")
	chatRouter.HandleFunc("/message", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/mark-read", controller.HandleMarkRead).Methods("POST")
	chatRouter.HandleFunc("/typing", controller.HandleTyping).Methods("POST")
	chatRouter.HandleFunc("/reaction", controller.HandleReaction).Methods("PATCH")
	chatRouter.HandleFunc("/dm", controller.HandleEnsureDM).Methods("POST")
	chatRouter.HandleFunc("/leave", controller.HandleLeaveChat).Methods("POST")
}
