package services

import (
	"sync"
	"time"

	"sportspal_server/models"
)

// ProfileCacheTTL bounds how long a sender profile is reused when rendering
// messages before it is re-fetched
const ProfileCacheTTL = 5 * time.Minute

type cachedProfile struct {
	profile  models.Profile
	cachedAt time.Time
}

// ProfileCache is a per-process, time-boxed profile cache. It only avoids
// redundant lookups; the profile documents remain the source of truth.
type ProfileCache struct {
	mu      sync.RWMutex
	entries map[string]cachedProfile
	now     func() time.Time
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{
		entries: make(map[string]cachedProfile),
		now:     time.Now,
	}
}

// Get returns a cached profile if it is younger than ProfileCacheTTL
func (pc *ProfileCache) Get(uid string) (models.Profile, bool) {
	pc.mu.RLock()
	entry, ok := pc.entries[uid]
	pc.mu.RUnlock()

	if !ok || pc.now().Sub(entry.cachedAt) > ProfileCacheTTL {
		return models.Profile{}, false
	}
	return entry.profile, true
}

// Put stores a freshly fetched profile
func (pc *ProfileCache) Put(profile models.Profile) {
	pc.mu.Lock()
	pc.entries[profile.UID] = cachedProfile{profile: profile, cachedAt: pc.now()}
	pc.mu.Unlock()
}

// Invalidate drops one entry, used after a profile mutation
func (pc *ProfileCache) Invalidate(uid string) {
	pc.mu.Lock()
	delete(pc.entries, uid)
	pc.mu.Unlock()
}
