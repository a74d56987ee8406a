package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"sportspal_server/services"
)

// GeneratePresignedURL generates a presigned URL for uploads
func GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Namespace string `json:"namespace"`
		FileName  string `json:"fileName"`
		FileType  string `json:"fileType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if payload.Namespace == "" || payload.FileName == "" || payload.FileType == "" {
		http.Error(w, `{"error": "Missing required fields: namespace, fileName, fileType"}`, http.StatusBadRequest)
		return
	}

	url, fileName, err := services.GenerateUploadURL(payload.Namespace, payload.FileName, payload.FileType)
	if err != nil {
		log.Printf("❌ Failed to generate upload URL: %v", err)
		http.Error(w, `{"error": "Failed to generate upload URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url, "fileName": fileName})
}

// GetPresignedReadURL generates a presigned URL for reading stored objects
func GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, `{"error": "Missing required field: key"}`, http.StatusBadRequest)
		return
	}

	url, err := services.GenerateReadURL(payload.Key)
	if err != nil {
		log.Printf("❌ Failed to generate read URL: %v", err)
		http.Error(w, `{"error": "Failed to generate read URL"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
