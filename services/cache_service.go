package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"sportspal_server/models"
)

// Freshness windows. The main cache is the cost-saving path for the activity
// feed; the historical cache holds past activities that will not change, so
// it lives much longer.
const (
	CacheFreshnessWindow      = 5 * time.Minute
	HistoricalRetentionWindow = 7 * 24 * time.Hour
)

const (
	sqlCreateCacheTable = `CREATE TABLE IF NOT EXISTS cache_entries(
                        cache_key varchar(100) NOT NULL PRIMARY KEY,
                        payload text NOT NULL,
                        saved_at integer NOT NULL
                        )`
	sqlUpsertCacheEntry = `INSERT INTO cache_entries(cache_key, payload, saved_at) VALUES (?, ?, ?)
                        ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	sqlSelectCacheEntry = `SELECT payload, saved_at FROM cache_entries WHERE cache_key = ?`
	sqlDeleteCacheEntry = `DELETE FROM cache_entries WHERE cache_key = ?`
)

// CacheService is the device-local activity cache. It is best-effort and
// never blocks a caller: write failures are logged and swallowed, and any
// read or decode failure is reported as a miss so the caller falls through
// to a remote fetch.
type CacheService struct {
	db  *sql.DB
	now func() time.Time
}

// NewCacheService opens (and if needed initializes) the cache database
func NewCacheService(path string) (*CacheService, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqlCreateCacheTable); err != nil {
		return nil, err
	}
	return &CacheService{db: db, now: time.Now}, nil
}

// SaveActivities writes the main activity cache entry
func (cs *CacheService) SaveActivities(activities []models.Activity) {
	cs.saveEntry(models.ActivitiesCacheKey, activities)
}

// SaveHistoricalActivities writes the long-lived historical cache entry
func (cs *CacheService) SaveHistoricalActivities(activities []models.Activity) {
	cs.saveEntry(models.HistoricalCacheKey, activities)
}

// LoadActivities returns the cached activity list if the entry is younger
// than the freshness window. ok=false signals a miss.
func (cs *CacheService) LoadActivities() ([]models.Activity, bool) {
	return cs.loadEntry(models.ActivitiesCacheKey, CacheFreshnessWindow)
}

// LoadHistoricalActivities returns cached historical activities within the
// multi-day retention window
func (cs *CacheService) LoadHistoricalActivities() ([]models.Activity, bool) {
	return cs.loadEntry(models.HistoricalCacheKey, HistoricalRetentionWindow)
}

// UpdateActivity merges a mutation into one entry of the main cache without
// rewriting the whole list and without touching the entry's timestamp, so an
// optimistic edit does not extend the cache's lifetime.
func (cs *CacheService) UpdateActivity(id string, apply func(*models.Activity)) {
	row := cs.db.QueryRow(sqlSelectCacheEntry, models.ActivitiesCacheKey)

	var payload string
	var savedAt int64
	if err := row.Scan(&payload, &savedAt); err != nil {
		return // nothing cached, nothing to patch
	}

	var activities []models.Activity
	if err := json.Unmarshal([]byte(payload), &activities); err != nil {
		log.Printf("⚠️ Cache entry for %s is corrupt, dropping it: %v", models.ActivitiesCacheKey, err)
		cs.Clear()
		return
	}

	for i := range activities {
		if activities[i].ID == id {
			apply(&activities[i])
			break
		}
	}

	updated, err := json.Marshal(activities)
	if err != nil {
		log.Printf("⚠️ Failed to re-encode cache entry: %v", err)
		return
	}
	if _, err := cs.db.Exec(sqlUpsertCacheEntry, models.ActivitiesCacheKey, string(updated), savedAt); err != nil {
		log.Printf("⚠️ Failed to patch cache entry: %v", err)
	}
}

// Clear removes the main activity cache entry
func (cs *CacheService) Clear() {
	if _, err := cs.db.Exec(sqlDeleteCacheEntry, models.ActivitiesCacheKey); err != nil {
		log.Printf("⚠️ Failed to clear activities cache: %v", err)
	}
}

// SetValue persists a small settings value (discovery range, calendar
// permission status) under its own key with no freshness window
func (cs *CacheService) SetValue(key, value string) {
	if _, err := cs.db.Exec(sqlUpsertCacheEntry, key, value, cs.now().Unix()); err != nil {
		log.Printf("⚠️ Failed to save %s: %v", key, err)
	}
}

// GetValue returns a settings value, or "" if absent
func (cs *CacheService) GetValue(key string) string {
	row := cs.db.QueryRow(sqlSelectCacheEntry, key)
	var payload string
	var savedAt int64
	if err := row.Scan(&payload, &savedAt); err != nil {
		return ""
	}
	return payload
}

// Close releases the underlying database handle
func (cs *CacheService) Close() error {
	return cs.db.Close()
}

func (cs *CacheService) saveEntry(key string, activities []models.Activity) {
	payload, err := json.Marshal(activities)
	if err != nil {
		log.Printf("⚠️ Failed to encode cache entry %s: %v", key, err)
		return
	}
	if _, err := cs.db.Exec(sqlUpsertCacheEntry, key, string(payload), cs.now().Unix()); err != nil {
		log.Printf("⚠️ Failed to write cache entry %s: %v", key, err)
	}
}

func (cs *CacheService) loadEntry(key string, window time.Duration) ([]models.Activity, bool) {
	row := cs.db.QueryRow(sqlSelectCacheEntry, key)

	var payload string
	var savedAt int64
	if err := row.Scan(&payload, &savedAt); err != nil {
		return nil, false
	}

	age := cs.now().Sub(time.Unix(savedAt, 0))
	if age > window {
		return nil, false
	}

	var activities []models.Activity
	if err := json.Unmarshal([]byte(payload), &activities); err != nil {
		log.Printf("⚠️ Cache entry for %s failed to decode, treating as miss: %v", key, err)
		return nil, false
	}
	return activities, true
}
