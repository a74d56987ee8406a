package models

// Profile defines the structure for user profiles
type Profile struct {
	UID              string   `dynamodbav:"uid" json:"uid"`
	Username         string   `dynamodbav:"username,omitempty" json:"username,omitempty"`
	UsernameLower    string   `dynamodbav:"username_lower,omitempty" json:"username_lower,omitempty"`
	PhotoURL         string   `dynamodbav:"photoURL,omitempty" json:"photoURL,omitempty"`
	Friends          []string `dynamodbav:"friends,stringset,omitemptyelem" json:"friends,omitempty"`
	RequestsSent     []string `dynamodbav:"requestsSent,stringset,omitemptyelem" json:"requestsSent,omitempty"`
	SelectedSports   []string `dynamodbav:"selectedSports,omitempty" json:"selectedSports,omitempty"`
	ExpoPushTokens   []string `dynamodbav:"expoPushTokens,omitempty" json:"expoPushTokens,omitempty"`
	FCMPushTokens    []string `dynamodbav:"fcmPushTokens,omitempty" json:"fcmPushTokens,omitempty"`
	Latitude         float64  `dynamodbav:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude        float64  `dynamodbav:"longitude,omitempty" json:"longitude,omitempty"`
	DiscoveryRangeKm float64  `dynamodbav:"discoveryRangeKm,omitempty" json:"discoveryRangeKm,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// BlockedUsersTable holds one item per user with the set of ids they blocked
const BlockedUsersTable = "BlockedUsers"

// BlockedUsers is a user's blocked-id set, kept in its own table so the
// profile document stays readable by other users
type BlockedUsers struct {
	UID        string   `dynamodbav:"uid" json:"uid"`
	BlockedIDs []string `dynamodbav:"blockedIds,stringset,omitemptyelem" json:"blockedIds"`
}

// HasFriend reports whether uid is already in the friends set
func (p *Profile) HasFriend(uid string) bool {
	for _, id := range p.Friends {
		if id == uid {
			return true
		}
	}
	return false
}
