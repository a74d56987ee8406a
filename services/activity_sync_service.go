package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"sportspal_server/models"
	"sportspal_server/utils"
)

// Confirmer answers a confirmation prompt before a destructive transition.
// The business logic awaits the response; the UI layer resolves it.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// StaticConfirmer answers every prompt with a fixed value, used by HTTP
// flows where the client app has already shown its own dialog
type StaticConfirmer bool

func (c StaticConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	return bool(c), nil
}

// ChannelConfirmer bridges a confirmation request to an interactive UI
// layer as an explicit request/response pair
type ChannelConfirmer struct {
	Requests chan ConfirmRequest
}

type ConfirmRequest struct {
	Prompt   string
	Response chan bool
}

func (c *ChannelConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := ConfirmRequest{Prompt: prompt, Response: make(chan bool, 1)}
	select {
	case c.Requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case answer := <-req.Response:
		return answer, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// ChatDeleter is the slice of the chat repository the sync context needs for
// last-participant cleanup
type ChatDeleter interface {
	DeleteChat(ctx context.Context, chatID string) error
}

// BlockedFetcher resolves a user's blocked-id list
type BlockedFetcher func(ctx context.Context, uid string) ([]string, error)

// ActivitySyncService is the per-user reactive activity store. It merges the
// local cache, remote fetches and optimistic mutations, and owns its state
// exclusively: nothing else mutates the cached or in-memory lists. One
// instance exists per authenticated session; see SyncManager.
type ActivitySyncService struct {
	userID  string
	repo    ActivityRepository
	chats   ChatDeleter
	cache   *CacheService
	blocked BlockedFetcher
	now     func() time.Time

	mu              sync.RWMutex
	allActivities   []models.Activity
	joinedIDs       []string
	blockedIDs      map[string]bool
	initialLoadDone bool
	subscribers     []func()
}

func newActivitySyncService(userID string, repo ActivityRepository, chats ChatDeleter, cache *CacheService, blocked BlockedFetcher) *ActivitySyncService {
	return &ActivitySyncService{
		userID:     userID,
		repo:       repo,
		chats:      chats,
		cache:      cache,
		blocked:    blocked,
		blockedIDs: map[string]bool{},
		now:        time.Now,
	}
}

// Subscribe registers a callback invoked after every state change
func (s *ActivitySyncService) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// AllActivities returns a snapshot of the merged activity list. Membership
// slices are copied too, so later optimistic mutations cannot reach into a
// snapshot a caller is still reading.
func (s *ActivitySyncService) AllActivities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Activity, len(s.allActivities))
	copy(out, s.allActivities)
	for i := range out {
		out[i].JoinedUserIDs = append([]string(nil), out[i].JoinedUserIDs...)
	}
	return out
}

// JoinedActivities returns a copy of the ids the user has joined
func (s *ActivitySyncService) JoinedActivities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.joinedIDs))
	copy(out, s.joinedIDs)
	return out
}

// InitialLoadComplete reports whether the first reload finished, so splash
// screens do not hang waiting for data that will never arrive
func (s *ActivitySyncService) InitialLoadComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoadDone
}

// ReloadAllActivities refreshes the merged activity list. Without
// forceRefresh a fresh main cache satisfies the reload with zero remote
// reads; that is the designed cost-saving path. Any failure produces an
// empty list rather than an error, and the initial-load flag is set either
// way.
func (s *ActivitySyncService) ReloadAllActivities(ctx context.Context, forceRefresh bool) {
	if s.userID == "" {
		s.setState(nil, nil)
		return
	}

	if !forceRefresh {
		if main, ok := s.cache.LoadActivities(); ok {
			historical, _ := s.cache.LoadHistoricalActivities()
			merged := MergeActivities(main, historical)
			log.Printf("📦 Serving %d activities from cache (no remote reads)", len(merged))
			s.setState(merged, joinedIn(merged, s.userID))
			return
		}
	}

	activities, err := s.repo.FetchAll(ctx)
	if err != nil {
		log.Printf("❌ Failed to fetch activities, serving empty list: %v", err)
		s.setState(nil, nil)
		return
	}

	s.resolveCreatorNames(ctx, activities)

	var current, historical []models.Activity
	now := s.now()
	for i := range activities {
		if utils.IsHistorical(activities[i].Date, activities[i].Time, now) {
			historical = append(historical, activities[i])
		} else {
			current = append(current, activities[i])
		}
	}

	s.cache.SaveActivities(current)
	s.cache.SaveHistoricalActivities(historical)

	s.setState(activities, joinedIn(activities, s.userID))
	log.Printf("✅ Reloaded %d activities (%d historical)", len(activities), len(historical))
}

// ToggleJoinActivity flips the user's membership in an activity. The local
// list and cache are mutated optimistically before the remote call; on
// failure the mutation is exactly reversed. Leaving as the sole remaining
// participant deletes the chat and then the activity instead.
func (s *ActivitySyncService) ToggleJoinActivity(ctx context.Context, activity models.Activity, confirm Confirmer, onNavigateAway func()) error {
	joined := activity.HasParticipant(s.userID)

	if joined && len(activity.JoinedUserIDs) == 1 {
		return s.leaveAsLastParticipant(ctx, activity, confirm, onNavigateAway)
	}

	prompt := fmt.Sprintf("Join %s?", activity.Activity)
	if joined {
		prompt = fmt.Sprintf("Leave %s?", activity.Activity)
	}
	ok, err := confirm.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return nil // cancelled, no side effects
	}

	// Optimistic local mutation so the UI reflects the change immediately
	s.applyMembership(activity.ID, !joined)

	if joined {
		err = s.repo.Leave(ctx, activity.ID, s.userID)
	} else {
		err = s.repo.Join(ctx, activity.ID, s.userID, activity.MaxParticipants)
	}

	if err != nil {
		// Exactly reverse the optimistic mutation
		s.applyMembership(activity.ID, joined)

		if IsExpectedRace(err) {
			log.Printf("ℹ️ Toggle on %s lost an expected race: %v", activity.ID, err)
			return nil
		}
		return err
	}

	// Re-sync the joined list from the remote view rather than a full reload
	if ids, err := s.repo.FetchJoinedIDs(ctx, s.userID); err == nil {
		s.mu.Lock()
		s.joinedIDs = ids
		s.mu.Unlock()
		s.notify()
	}
	return nil
}

// ReloadBlockedUsers refreshes the cached blocked-id set
func (s *ActivitySyncService) ReloadBlockedUsers(ctx context.Context) {
	if s.blocked == nil {
		return
	}
	ids, err := s.blocked(ctx, s.userID)
	if err != nil {
		log.Printf("⚠️ Failed to reload blocked users: %v", err)
		return
	}

	blocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		blocked[id] = true
	}

	s.mu.Lock()
	s.blockedIDs = blocked
	s.mu.Unlock()
	s.notify()
}

// IsUserBlockedByID checks membership in the cached blocked set
func (s *ActivitySyncService) IsUserBlockedByID(uid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockedIDs[uid]
}

func (s *ActivitySyncService) leaveAsLastParticipant(ctx context.Context, activity models.Activity, confirm Confirmer, onNavigateAway func()) error {
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("You are the last participant. Leaving will delete %s. Continue?", activity.Activity))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	// Navigate away before the document disappears underneath the UI
	if onNavigateAway != nil {
		onNavigateAway()
	}

	// The chat goes first, while the user still holds participant-level
	// delete permission on it
	if err := s.chats.DeleteChat(ctx, activity.ID); err != nil && !IsExpectedRace(err) {
		log.Printf("⚠️ Failed to delete chat for activity %s: %v", activity.ID, err)
	}

	if activity.CreatorID == s.userID {
		if err := s.repo.Delete(ctx, activity.ID); err != nil {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
	} else {
		if err := s.repo.Leave(ctx, activity.ID, s.userID); err != nil && !IsExpectedRace(err) {
			return fmt.Errorf("failed to leave activity: %w", err)
		}
		if err := s.repo.Delete(ctx, activity.ID); err != nil && !IsExpectedRace(err) {
			return fmt.Errorf("failed to delete activity: %w", err)
		}
	}

	s.removeActivity(activity.ID)
	return nil
}

// applyMembership mutates the in-memory list and the cached entry for one
// activity. join=true adds the user, join=false removes them; calling with
// the opposite value restores the prior state exactly.
func (s *ActivitySyncService) applyMembership(activityID string, join bool) {
	s.mu.Lock()
	for i := range s.allActivities {
		if s.allActivities[i].ID != activityID {
			continue
		}
		if join {
			s.allActivities[i].JoinedCount++
			s.allActivities[i].JoinedUserIDs = append(s.allActivities[i].JoinedUserIDs, s.userID)
		} else {
			s.allActivities[i].JoinedCount--
			s.allActivities[i].JoinedUserIDs = removeString(s.allActivities[i].JoinedUserIDs, s.userID)
		}
		break
	}
	if join {
		s.joinedIDs = append(s.joinedIDs, activityID)
	} else {
		s.joinedIDs = removeString(s.joinedIDs, activityID)
	}
	s.mu.Unlock()

	userID := s.userID
	s.cache.UpdateActivity(activityID, func(a *models.Activity) {
		if join {
			a.JoinedCount++
			a.JoinedUserIDs = append(a.JoinedUserIDs, userID)
		} else {
			a.JoinedCount--
			a.JoinedUserIDs = removeString(a.JoinedUserIDs, userID)
		}
	})

	s.notify()
}

func (s *ActivitySyncService) removeActivity(activityID string) {
	s.mu.Lock()
	kept := s.allActivities[:0]
	for i := range s.allActivities {
		if s.allActivities[i].ID != activityID {
			kept = append(kept, s.allActivities[i])
		}
	}
	s.allActivities = kept
	s.joinedIDs = removeString(s.joinedIDs, activityID)
	s.mu.Unlock()

	// Drop the whole cache entry; the next reload rebuilds it
	s.cache.Clear()
	s.notify()
}

func (s *ActivitySyncService) resolveCreatorNames(ctx context.Context, activities []models.Activity) {
	var creatorIDs []string
	for i := range activities {
		creatorIDs = append(creatorIDs, activities[i].CreatorID)
	}

	profiles, err := s.repo.FetchUsersByIDs(ctx, creatorIDs)
	if err != nil {
		log.Printf("⚠️ Failed to resolve creator names: %v", err)
		return
	}

	for i := range activities {
		if profile, ok := profiles[activities[i].CreatorID]; ok && profile.Username != "" {
			activities[i].Creator = profile.Username
		}
	}
}

func (s *ActivitySyncService) setState(activities []models.Activity, joinedIDs []string) {
	s.mu.Lock()
	s.allActivities = activities
	s.joinedIDs = joinedIDs
	s.initialLoadDone = true
	s.mu.Unlock()
	s.notify()
}

func (s *ActivitySyncService) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// MergeActivities merges the main and historical cache partitions,
// deduplicating by id with the main copy winning
func MergeActivities(main, historical []models.Activity) []models.Activity {
	seen := make(map[string]bool, len(main))
	merged := make([]models.Activity, 0, len(main)+len(historical))
	for i := range main {
		if seen[main[i].ID] {
			continue
		}
		seen[main[i].ID] = true
		merged = append(merged, main[i])
	}
	for i := range historical {
		if seen[historical[i].ID] {
			continue
		}
		seen[historical[i].ID] = true
		merged = append(merged, historical[i])
	}
	return merged
}

func joinedIn(activities []models.Activity, userID string) []string {
	var ids []string
	for i := range activities {
		if activities[i].HasParticipant(userID) {
			ids = append(ids, activities[i].ID)
		}
	}
	return ids
}

// removeString returns a fresh slice; the input's backing array may be
// shared with snapshots handed out earlier and must not be rewritten.
func removeString(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// SyncManager owns one ActivitySyncService per authenticated user. Sessions
// are created on auth start and disposed on sign-out, so no ambient global
// state outlives a session.
type SyncManager struct {
	repo    ActivityRepository
	chats   ChatDeleter
	cache   *CacheService
	blocked BlockedFetcher

	mu       sync.Mutex
	sessions map[string]*ActivitySyncService
}

func NewSyncManager(repo ActivityRepository, chats ChatDeleter, cache *CacheService, blocked BlockedFetcher) *SyncManager {
	return &SyncManager{
		repo:     repo,
		chats:    chats,
		cache:    cache,
		blocked:  blocked,
		sessions: make(map[string]*ActivitySyncService),
	}
}

// StartSession returns the sync service for a user, creating it on first
// use
func (m *SyncManager) StartSession(userID string) *ActivitySyncService {
	m.mu.Lock()
	defer m.mu.Unlock()

	if svc, ok := m.sessions[userID]; ok {
		return svc
	}
	svc := newActivitySyncService(userID, m.repo, m.chats, m.cache, m.blocked)
	m.sessions[userID] = svc
	log.Printf("🔑 Sync session started for %s", userID)
	return svc
}

// Session returns an existing session without creating one
func (m *SyncManager) Session(userID string) (*ActivitySyncService, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc, ok := m.sessions[userID]
	return svc, ok
}

// EndSession disposes a user's sync state on sign-out
func (m *SyncManager) EndSession(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	log.Printf("🔒 Sync session ended for %s", userID)
}
