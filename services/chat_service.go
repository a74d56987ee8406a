package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"sportspal_server/models"
)

const (
	// DefaultMessageWindow bounds the live message view to a sliding window
	// instead of an unbounded history
	DefaultMessageWindow = 50
	sendRetryAttempts    = 3
	sendRetryBackoff     = 500 * time.Millisecond
)

// MessageTimestampLayout is the fixed-width encoding of createdAt. The value
// is the Messages sort key and the pagination cursor, so its lexicographic
// order must match chronological order; the fraction is zero-padded because
// variable-width fractions sort ".5" after ".56".
const MessageTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ChatService reads and writes chat and message documents
type ChatService struct {
	Dynamo   DynamoAPI
	Notifier *NotificationService
	Profiles *ProfileCache

	typing   *TypingTracker
	receipts *ReadReceiptDebouncer
	sleep    func(time.Duration)
}

// NewChatService wires the chat repository with its debouncers
func NewChatService(dynamo DynamoAPI, notifier *NotificationService) *ChatService {
	cs := &ChatService{
		Dynamo:   dynamo,
		Notifier: notifier,
		Profiles: NewProfileCache(),
		sleep:    time.Sleep,
	}
	cs.typing = NewTypingTracker(cs.setTypingFlag)
	cs.receipts = NewReadReceiptDebouncer(cs.writeReadReceipt)
	return cs
}

// GetChat fetches a single chat document
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.ChatsTable, key)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, fmt.Errorf("failed to parse chat %s: %w", chatID, err)
	}
	if err := chat.Validate(); err != nil {
		return nil, fmt.Errorf("chat %s is malformed: %w", chatID, err)
	}
	return &chat, nil
}

// CreateChat inserts a new chat document
func (s *ChatService) CreateChat(ctx context.Context, chat models.Chat) error {
	if chat.Typing == nil {
		chat.Typing = map[string]string{}
	}
	if chat.Reads == nil {
		chat.Reads = map[string]string{}
	}
	if err := chat.Validate(); err != nil {
		return fmt.Errorf("refusing to create invalid chat: %w", err)
	}
	if err := s.Dynamo.PutItem(ctx, models.ChatsTable, chat); err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	log.Printf("✅ Chat %s (%s) created", chat.ID, chat.Type)
	return nil
}

// EnsureDMChat returns the deterministic DM chat for a user pair, creating
// it on first use
func (s *ChatService) EnsureDMChat(ctx context.Context, uidA, uidB string) (*models.Chat, error) {
	chatID := models.DMChatID(uidA, uidB)

	chat, err := s.GetChat(ctx, chatID)
	if err == nil {
		return chat, nil
	}
	if KindOf(err) != KindNotFound {
		return nil, err
	}

	newChat := models.Chat{
		ID:           chatID,
		Type:         models.ChatTypeDM,
		Participants: []string{uidA, uidB},
	}
	if err := s.CreateChat(ctx, newChat); err != nil {
		return nil, err
	}
	return &newChat, nil
}

// GetLatestMessages fetches the newest messages in a chat and returns them
// in ascending order so the latest appears at the bottom in UI
func (s *ChatService) GetLatestMessages(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageWindow
	}

	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return unmarshalMessagesAscending(items)
}

// GetMessagesBefore pages backwards through older messages. The cursor is
// the createdAt of the oldest message the caller already has.
func (s *ChatService) GetMessagesBefore(ctx context.Context, chatID, beforeCreatedAt string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageWindow
	}

	keyCondition := "chatId = :chatId AND createdAt < :before"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
		":before": &types.AttributeValueMemberS{Value: beforeCreatedAt},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch older messages: %w", err)
	}
	return unmarshalMessagesAscending(items)
}

// SendMessage stores a message, retrying transient failures with linear
// backoff, then updates the chat preview and fans out push notifications.
func (s *ChatService) SendMessage(ctx context.Context, message models.Message) (*models.Message, error) {
	if message.ChatID == "" || message.SenderID == "" {
		return nil, fmt.Errorf("message is missing chatId or senderId")
	}
	if message.MessageID == "" {
		message.MessageID = uuid.NewString()
	}
	if message.Type == "" {
		message.Type = models.MessageTypeText
	}
	message.CreatedAt = time.Now().UTC().Format(MessageTimestampLayout)
	if message.Reactions == nil {
		message.Reactions = map[string]string{}
	}

	var err error
	for attempt := 1; attempt <= sendRetryAttempts; attempt++ {
		err = s.Dynamo.PutItem(ctx, models.MessagesTable, message)
		if err == nil {
			break
		}
		log.Printf("⚠️ Send attempt %d/%d failed for chat %s: %v", attempt, sendRetryAttempts, message.ChatID, err)
		if attempt < sendRetryAttempts {
			s.sleep(time.Duration(attempt) * sendRetryBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to send message after %d attempts: %w", sendRetryAttempts, err)
	}

	// Preview update travels with every send so chat lists stay current
	s.updateChatPreview(ctx, message)
	s.typing.Stop(ctx, message.ChatID, message.SenderID)

	if s.Notifier != nil {
		s.Notifier.NotifyNewMessage(ctx, message)
	}

	log.Printf("📩 Message %s stored in chat %s", message.MessageID, message.ChatID)
	return &message, nil
}

// MarkChatRead records a read receipt, coalesced to at most one write per
// second per chat
func (s *ChatService) MarkChatRead(ctx context.Context, chatID, userID string) {
	s.receipts.Mark(ctx, chatID, userID)
}

// PingTyping records typing input, debounced to one write per 800ms with a
// 3s auto-expiry
func (s *ChatService) PingTyping(ctx context.Context, chatID, userID string) {
	s.typing.Ping(ctx, chatID, userID)
}

// StopTyping clears the typing flag immediately
func (s *ChatService) StopTyping(ctx context.Context, chatID, userID string) {
	s.typing.Stop(ctx, chatID, userID)
}

// AddReaction sets the acting user's reaction emoji on a message
func (s *ChatService) AddReaction(ctx context.Context, chatID, createdAt, userID, emoji string) error {
	key := messageKey(chatID, createdAt)
	updateExpression := "SET reactions.#userId = :emoji"
	expressionValues := map[string]types.AttributeValue{
		":emoji": &types.AttributeValueMemberS{Value: emoji},
	}
	expressionNames := map[string]string{
		"#userId": userID,
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MessagesTable, updateExpression, "attribute_exists(chatId)", key, expressionValues, expressionNames)
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

// RemoveReaction clears the acting user's reaction from a message
func (s *ChatService) RemoveReaction(ctx context.Context, chatID, createdAt, userID string) error {
	key := messageKey(chatID, createdAt)
	updateExpression := "REMOVE reactions.#userId"
	expressionNames := map[string]string{
		"#userId": userID,
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.MessagesTable, updateExpression, "attribute_exists(chatId)", key, nil, expressionNames)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

// AddParticipant adds a user to the chat's participant set. Updating a chat
// that no longer exists is reported as KindConditionFailed, which callers
// treat as an expected race.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, userID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	updateExpression := "ADD participants :uid"
	expressionValues := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberSS{Value: []string{userID}},
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, updateExpression, "attribute_exists(id)", key, expressionValues, nil)
	return err
}

// RemoveParticipant removes a user from the chat's participant set
func (s *ChatService) RemoveParticipant(ctx context.Context, chatID, userID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	updateExpression := "DELETE participants :uid REMOVE typing.#userId, reads.#userId"
	expressionValues := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberSS{Value: []string{userID}},
	}
	expressionNames := map[string]string{
		"#userId": userID,
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, updateExpression, "attribute_exists(id)", key, expressionValues, expressionNames)
	return err
}

// LeaveChat removes the user from the chat, deleting the chat outright when
// they were the last participant
func (s *ChatService) LeaveChat(ctx context.Context, chatID, userID string) error {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil // already gone
		}
		return err
	}

	if len(chat.Participants) == 1 && chat.Participants[0] == userID {
		return s.DeleteChat(ctx, chatID)
	}

	if err := s.RemoveParticipant(ctx, chatID, userID); err != nil && !IsExpectedRace(err) {
		return fmt.Errorf("failed to leave chat %s: %w", chatID, err)
	}
	log.Printf("👋 User %s left chat %s", userID, chatID)
	return nil
}

// DeleteChat removes a chat document and its message history
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	// Purge messages first so none are orphaned if deletion is interrupted
	keyCondition := "chatId = :chatId"
	expressionValues := map[string]types.AttributeValue{
		":chatId": &types.AttributeValueMemberS{Value: chatID},
	}

	for {
		items, err := s.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil, 25)
		if err != nil {
			return fmt.Errorf("failed to list messages for deletion: %w", err)
		}
		if len(items) == 0 {
			break
		}

		var writes []types.WriteRequest
		for _, item := range items {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"chatId":    item["chatId"],
						"createdAt": item["createdAt"],
					},
				},
			})
		}
		if err := s.Dynamo.BatchWriteItems(ctx, models.MessagesTable, writes); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
	}

	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	if err := s.Dynamo.DeleteItem(ctx, models.ChatsTable, key); err != nil {
		return err
	}
	log.Printf("🗑️ Chat %s deleted", chatID)
	return nil
}

// GetSenderProfile resolves a message sender's profile through the
// per-process cache
func (s *ChatService) GetSenderProfile(ctx context.Context, uid string) (*models.Profile, error) {
	if profile, ok := s.Profiles.Get(uid); ok {
		return &profile, nil
	}

	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", uid, err)
	}
	s.Profiles.Put(profile)
	return &profile, nil
}

func (s *ChatService) updateChatPreview(ctx context.Context, message models.Message) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: message.ChatID},
	}
	updateExpression := "SET lastMessageText = :text, lastMessageTimestamp = :ts"
	previewText := message.Text
	if message.Type != models.MessageTypeText {
		previewText = "[" + message.Type + "]"
	}
	expressionValues := map[string]types.AttributeValue{
		":text": &types.AttributeValueMemberS{Value: previewText},
		":ts":   &types.AttributeValueMemberS{Value: message.CreatedAt},
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, updateExpression, "attribute_exists(id)", key, expressionValues, nil)
	if err != nil && !IsExpectedRace(err) {
		log.Printf("⚠️ Failed to update chat preview for %s: %v", message.ChatID, err)
	}
}

func (s *ChatService) setTypingFlag(ctx context.Context, chatID, userID string, typing bool) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	expressionNames := map[string]string{
		"#userId": userID,
	}

	var err error
	if typing {
		updateExpression := "SET typing.#userId = :ts"
		expressionValues := map[string]types.AttributeValue{
			":ts": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		}
		_, err = s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, updateExpression, "attribute_exists(id)", key, expressionValues, expressionNames)
	} else {
		_, err = s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, "REMOVE typing.#userId", "attribute_exists(id)", key, nil, expressionNames)
	}

	if IsExpectedRace(err) {
		return nil // chat deleted underneath us, nothing to signal
	}
	return err
}

func (s *ChatService) writeReadReceipt(ctx context.Context, chatID, userID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	updateExpression := "SET reads.#userId = :ts"
	expressionValues := map[string]types.AttributeValue{
		":ts": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	expressionNames := map[string]string{
		"#userId": userID,
	}

	_, err := s.Dynamo.UpdateItemWithCondition(ctx, models.ChatsTable, updateExpression, "attribute_exists(id)", key, expressionValues, expressionNames)
	if IsExpectedRace(err) {
		return nil
	}
	return err
}

func messageKey(chatID, createdAt string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"chatId":    &types.AttributeValueMemberS{Value: chatID},
		"createdAt": &types.AttributeValueMemberS{Value: createdAt},
	}
}

func unmarshalMessagesAscending(items []map[string]types.AttributeValue) ([]models.Message, error) {
	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// Query returned latest first; reverse so the latest is at the bottom
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
