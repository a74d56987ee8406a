package models

// Notification defines the structure for an in-app notification document
type Notification struct {
	ID         string `dynamodbav:"id" json:"id"`
	UserID     string `dynamodbav:"userId" json:"userId"` // recipient
	Type       string `dynamodbav:"type" json:"type"`
	FromUserID string `dynamodbav:"fromUserId" json:"fromUserId"`
	ActivityID string `dynamodbav:"activityId,omitempty" json:"activityId,omitempty"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
	Read       bool   `dynamodbav:"read" json:"read"`
}

// NotificationsTable is the DynamoDB table name for notifications
const NotificationsTable = "Notifications"
