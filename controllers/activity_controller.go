package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sportspal_server/models"
	"sportspal_server/services"
	"sportspal_server/utils"
)

// ActivityController struct
type ActivityController struct {
	ActivityService *services.ActivityService
	SyncManager     *services.SyncManager
}

// NewActivityController initializes the activity controller
func NewActivityController(service *services.ActivityService, manager *services.SyncManager) *ActivityController {
	return &ActivityController{ActivityService: service, SyncManager: manager}
}

// HandleListActivities serves the merged activity list through the caller's
// sync session (cache-first unless forceRefresh=true)
func (c *ActivityController) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}
	forceRefresh := r.URL.Query().Get("forceRefresh") == "true"

	sync := c.SyncManager.StartSession(userID)
	sync.ReloadAllActivities(r.Context(), forceRefresh)

	activities := sync.AllActivities()

	// Optional discovery-range filter around the caller's position
	if lat, lon, rangeKm, ok := parseDiscoveryParams(r); ok {
		var inRange []models.Activity
		for i := range activities {
			d := utils.CalculateDistance(lat, lon, activities[i].Latitude, activities[i].Longitude)
			if d <= rangeKm {
				activities[i].Distance = d
				inRange = append(inRange, activities[i])
			}
		}
		activities = inRange
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"activities":        activities,
		"joinedActivityIds": sync.JoinedActivities(),
	})
}

// HandleCreateActivity creates a new activity and its group chat
func (c *ActivityController) HandleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Date = utils.NormalizeDateFormat(activity.Date)
	if activity.JoinedCount == 0 && len(activity.JoinedUserIDs) == 0 && activity.CreatorID != "" {
		// The creator joins their own activity on creation
		activity.JoinedUserIDs = []string{activity.CreatorID}
		activity.JoinedCount = 1
	}

	if err := c.ActivityService.Create(r.Context(), activity); err != nil {
		log.Printf("❌ Failed to create activity: %v", err)
		http.Error(w, `{"error": "Failed to create activity"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(activity)
}

// HandleToggleJoin flips the caller's membership through the sync context's
// optimistic state machine. The mobile client has already shown its own
// confirmation dialog, so the confirmation here is pre-resolved.
func (c *ActivityController) HandleToggleJoin(w http.ResponseWriter, r *http.Request) {
	var request struct {
		UserID   string          `json:"userId"`
		Activity models.Activity `json:"activity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.UserID == "" || request.Activity.ID == "" {
		http.Error(w, `{"error": "Missing required fields: userId, activity.id"}`, http.StatusBadRequest)
		return
	}

	sync := c.SyncManager.StartSession(request.UserID)
	err := sync.ToggleJoinActivity(r.Context(), request.Activity, services.StaticConfirmer(true), nil)
	if err != nil {
		log.Printf("❌ Toggle join failed for %s: %v", request.Activity.ID, err)
		http.Error(w, `{"error": "Failed to update membership"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            "success",
		"joinedActivityIds": sync.JoinedActivities(),
	})
}

// HandleDeleteActivity removes an activity document
func (c *ActivityController) HandleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	activityID := mux.Vars(r)["activityId"]
	if activityID == "" {
		http.Error(w, `{"error": "activityId is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.ActivityService.Delete(r.Context(), activityID); err != nil {
		http.Error(w, `{"error": "Failed to delete activity"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// HandleBlockedUsers reloads and serves the caller's blocked-id list
func (c *ActivityController) HandleBlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, `{"error": "userId is required"}`, http.StatusBadRequest)
		return
	}

	sync := c.SyncManager.StartSession(userID)
	sync.ReloadBlockedUsers(r.Context())

	target := r.URL.Query().Get("targetId")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"blocked": target != "" && sync.IsUserBlockedByID(target),
	})
}

// HandleStartSession creates (or resumes) the caller's sync session and
// kicks off the initial load
func (c *ActivityController) HandleStartSession(w http.ResponseWriter, r *http.Request) {
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

	sync := c.SyncManager.StartSession(request.UserID)
	sync.ReloadAllActivities(r.Context(), false)
	sync.ReloadBlockedUsers(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"initialLoadComplete": sync.InitialLoadComplete(),
		"activities":          sync.AllActivities(),
		"joinedActivityIds":   sync.JoinedActivities(),
	})
}

// HandleEndSession disposes the caller's sync session on sign-out
func (c *ActivityController) HandleEndSession(w http.ResponseWriter, r *http.Request) {
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

	c.SyncManager.EndSession(request.UserID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func parseDiscoveryParams(r *http.Request) (lat, lon, rangeKm float64, ok bool) {
	q := r.URL.Query()
	var err error
	if lat, err = parseFloat(q.Get("lat")); err != nil {
		return 0, 0, 0, false
	}
	if lon, err = parseFloat(q.Get("lon")); err != nil {
		return 0, 0, 0, false
	}
	if rangeKm, err = parseFloat(q.Get("rangeKm")); err != nil || rangeKm <= 0 {
		return 0, 0, 0, false
	}
	return lat, lon, rangeKm, true
}
