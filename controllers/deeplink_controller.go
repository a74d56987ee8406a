package controllers

import (
	"encoding/json"
	"net/http"

	"sportspal_server/utils"
)

// HandleResolveDeepLink parses an incoming link into a navigation target
func HandleResolveDeepLink(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, `{"error": "url is required"}`, http.StatusBadRequest)
		return
	}

	link, err := utils.ParseDeepLink(rawURL)
	if err != nil {
		http.Error(w, `{"error": "Unrecognized link"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(link)
}
