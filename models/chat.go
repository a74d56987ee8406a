package models

import (
	"errors"
	"sort"
	"strings"
)

// Chat defines the structure for a chat document. One chat exists per
// activity (id = activityId), one per DM pair (deterministic id from the
// sorted uid pair), or freestanding for custom groups.
type Chat struct {
	ID                   string            `dynamodbav:"id" json:"id"`
	Type                 string            `dynamodbav:"type" json:"type"`
	Participants         []string          `dynamodbav:"participants,stringset,omitemptyelem" json:"participants"`
	ActivityID           string            `dynamodbav:"activityId,omitempty" json:"activityId,omitempty"`
	Title                string            `dynamodbav:"title,omitempty" json:"title,omitempty"`
	PhotoURL             string            `dynamodbav:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Typing               map[string]string `dynamodbav:"typing" json:"typing,omitempty"` // uid -> RFC3339 timestamp
	Reads                map[string]string `dynamodbav:"reads" json:"reads,omitempty"`   // uid -> RFC3339 timestamp
	LastMessageText      string            `dynamodbav:"lastMessageText,omitempty" json:"lastMessageText,omitempty"`
	LastMessageTimestamp string            `dynamodbav:"lastMessageTimestamp,omitempty" json:"lastMessageTimestamp,omitempty"`
}

// Message defines the structure for a message within a chat. Reactions are a
// map keyed by reacting user id -> emoji.
type Message struct {
	ChatID    string            `dynamodbav:"chatId" json:"chatId"`
	CreatedAt string            `dynamodbav:"createdAt" json:"createdAt"` // sort key
	MessageID string            `dynamodbav:"messageId" json:"messageId"`
	SenderID  string            `dynamodbav:"senderId" json:"senderId"`
	Text      string            `dynamodbav:"text" json:"text"`
	Type      string            `dynamodbav:"type" json:"type"`
	ReplyToID string            `dynamodbav:"replyToId,omitempty" json:"replyToId,omitempty"`
	Reactions map[string]string `dynamodbav:"reactions" json:"reactions,omitempty"`
}

// ChatsTable is the DynamoDB table name for chat documents
const ChatsTable = "Chats"

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"

// DMChatID derives the deterministic chat id for a DM pair
func DMChatID(uidA, uidB string) string {
	pair := []string{uidA, uidB}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// Validate rejects malformed chat documents at the boundary
func (c *Chat) Validate() error {
	if c.ID == "" {
		return errors.New("chat is missing an id")
	}
	switch c.Type {
	case ChatTypeActivityGroup, ChatTypeDM, ChatTypeGroup:
	default:
		return errors.New("chat has an unknown type: " + c.Type)
	}
	if c.Type == ChatTypeDM && len(c.Participants) != 2 {
		return errors.New("dm chat must have exactly two participants")
	}
	return nil
}

// HasParticipant reports whether uid is in the participant set
func (c *Chat) HasParticipant(uid string) bool {
	for _, id := range c.Participants {
		if id == uid {
			return true
		}
	}
	return false
}
