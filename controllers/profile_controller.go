package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sportspal_server/models"
	"sportspal_server/services"
)

// ProfileController struct
type ProfileController struct {
	ProfileService *services.ProfileService
}

// NewProfileController initializes the profile controller
func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: service}
}

// HandleAddProfile creates or replaces a profile
func (c *ProfileController) HandleAddProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := c.ProfileService.AddProfile(r.Context(), profile)
	if err != nil {
		log.Printf("❌ Failed to store profile: %v", err)
		http.Error(w, `{"error": "Failed to store profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stored)
}

// HandleGetProfile fetches one profile by id
func (c *ProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	profile, err := c.ProfileService.GetProfile(r.Context(), uid)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// HandleSearchProfiles finds profiles by username prefix
func (c *ProfileController) HandleSearchProfiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, `{"error": "q is required"}`, http.StatusBadRequest)
		return
	}

	profiles, err := c.ProfileService.SearchByUsername(r.Context(), query)
	if err != nil {
		http.Error(w, `{"error": "Search failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}

// HandleFriendRequest processes send/accept/decline/remove friend actions
func (c *ProfileController) HandleFriendRequest(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
		Action   string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, targetId"}`, http.StatusBadRequest)
		return
	}

	var err error
	switch request.Action {
	case "send":
		err = c.ProfileService.SendFriendRequest(r.Context(), request.UserID, request.TargetID)
	case "accept":
		err = c.ProfileService.AcceptFriendRequest(r.Context(), request.UserID, request.TargetID)
	case "decline":
		err = c.ProfileService.DeclineFriendRequest(r.Context(), request.UserID, request.TargetID)
	case "remove":
		err = c.ProfileService.RemoveFriend(r.Context(), request.UserID, request.TargetID)
	default:
		http.Error(w, `{"error": "Invalid action"}`, http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Printf("❌ Friend action %s failed: %v", request.Action, err)
		http.Error(w, `{"error": "Friend action failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleRegisterPushToken stores a device push token
func (c *ProfileController) HandleRegisterPushToken(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID    string `json:"userId"`
		TokenType string `json:"tokenType"`
		Token     string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.Token == "" {
		http.Error(w, `{"error": "Missing required fields: userId, token"}`, http.StatusBadRequest)
		return
	}

	if err := c.ProfileService.RegisterPushToken(r.Context(), request.UserID, request.TokenType, request.Token); err != nil {
		log.Printf("❌ Failed to register push token: %v", err)
		http.Error(w, `{"error": "Failed to register push token"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleBlock blocks or unblocks a user
func (c *ProfileController) HandleBlock(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string `json:"userId"`
		TargetID string `json:"targetId"`
		Block    bool   `json:"block"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.TargetID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, targetId"}`, http.StatusBadRequest)
		return
	}

	var err error
	if request.Block {
		err = c.ProfileService.BlockUser(r.Context(), request.UserID, request.TargetID)
	} else {
		err = c.ProfileService.UnblockUser(r.Context(), request.UserID, request.TargetID)
	}
	if err != nil {
		http.Error(w, `{"error": "Failed to update block list"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
