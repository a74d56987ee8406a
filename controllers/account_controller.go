package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"sportspal_server/services"
)

// AccountController struct
type AccountController struct {
	AccountService *services.AccountService
}

// NewAccountController initializes the account controller
func NewAccountController(service *services.AccountService) *AccountController {
	return &AccountController{AccountService: service}
}

// HandleDeleteAccount removes a user and all their data
func (c *AccountController) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" {
		http.Error(w, `{"error": "Missing required field: userId"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🗑️ Account deletion requested for user %s", request.UserID)

	if err := c.AccountService.DeleteAccount(r.Context(), request.UserID); err != nil {
		log.Printf("❌ Account deletion failed for %s: %v", request.UserID, err)
		http.Error(w, `{"error": "Failed to delete account"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
