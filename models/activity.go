package models

import "errors"

// Activity defines the structure for a user-organized sports meetup
type Activity struct {
	ID              string   `dynamodbav:"id" json:"id"`
	Activity        string   `dynamodbav:"activity" json:"activity"` // sport name
	Location        string   `dynamodbav:"location" json:"location"`
	Creator         string   `dynamodbav:"creator" json:"creator"`
	CreatorID       string   `dynamodbav:"creatorId" json:"creatorId"`
	Date            string   `dynamodbav:"date" json:"date"` // yyyy-mm-dd after normalization
	Time            string   `dynamodbav:"time" json:"time"` // HH:MM
	Distance        float64  `dynamodbav:"distance,omitempty" json:"distance,omitempty"`
	MaxParticipants int      `dynamodbav:"maxParticipants" json:"maxParticipants"`
	JoinedCount     int      `dynamodbav:"joinedCount" json:"joinedCount"`
	JoinedUserIDs   []string `dynamodbav:"joinedUserIds,stringset,omitemptyelem" json:"joinedUserIds"`
	Latitude        float64  `dynamodbav:"latitude" json:"latitude"`
	Longitude       float64  `dynamodbav:"longitude" json:"longitude"`
	Description     string   `dynamodbav:"description,omitempty" json:"description,omitempty"`
	GPX             string   `dynamodbav:"gpx,omitempty" json:"gpx,omitempty"`
	DrawnRoute      string   `dynamodbav:"drawnRoute,omitempty" json:"drawnRoute,omitempty"`
}

// ActivitiesTable is the DynamoDB table name for activities
const ActivitiesTable = "Activities"

// Validate rejects malformed activity documents at the boundary instead of
// silently defaulting fields.
func (a *Activity) Validate() error {
	if a.ID == "" {
		return errors.New("activity is missing an id")
	}
	if a.Activity == "" {
		return errors.New("activity is missing a sport name")
	}
	if a.MaxParticipants < 0 {
		return errors.New("activity has a negative maxParticipants")
	}
	if a.JoinedCount < 0 {
		return errors.New("activity has a negative joinedCount")
	}
	return nil
}

// HasParticipant reports whether userID is in the joined set
func (a *Activity) HasParticipant(userID string) bool {
	for _, id := range a.JoinedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
