package models

// ✅ Chat Types (per-activity group, direct message, freestanding group)
const (
	ChatTypeActivityGroup = "ActivityGroup"
	ChatTypeDM            = "dm"
	ChatTypeGroup         = "Group"
)

// ✅ Message Types
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeAudio  = "audio"
	MessageTypeSystem = "system"
)

// ✅ Notification Types
const (
	NotificationTypeFriendRequest  = "friend_request"
	NotificationTypeFriendAccept   = "friend_accept"
	NotificationTypeActivityInvite = "activity_invite"
)

// ✅ Local cache keys
const (
	ActivitiesCacheKey = "activities_cache"
	HistoricalCacheKey = "historical_activities_cache"
	DiscoveryRangeKey  = "discoveryRange"
	CalendarStatusKey  = "calendarStatus"
)
