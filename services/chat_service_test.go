package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"sportspal_server/models"
)

// fakeDynamo is an in-memory DynamoAPI stand-in. Behavior is configured per
// test through the putErrs queue and canned query results.
type fakeDynamo struct {
	putErrs      []error
	puts         []interface{}
	queryResults []map[string]types.AttributeValue
	getResult    map[string]types.AttributeValue
	updates      []string
	conditions   []string
	updateErr    error
	scan         func(result interface{}) error
	deletes      int
}

func (f *fakeDynamo) QueryItems(ctx context.Context, tableName, keyCond string, values map[string]types.AttributeValue, names map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	out := f.queryResults
	f.queryResults = nil
	return out, nil
}

func (f *fakeDynamo) QueryItemsWithOptions(ctx context.Context, tableName, keyCond string, values map[string]types.AttributeValue, names map[string]string, limit int32, latestFirst bool) ([]map[string]types.AttributeValue, error) {
	return f.queryResults, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, tableName string, item interface{}) error {
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return err
		}
	}
	f.puts = append(f.puts, item)
	return nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	if f.getResult == nil {
		return nil, &ServiceError{Kind: KindNotFound, Message: "item not found"}
	}
	return f.getResult, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, tableName, updateExpression string, key, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	return f.UpdateItemWithCondition(ctx, tableName, updateExpression, "", key, values, names)
}

func (f *fakeDynamo) UpdateItemWithCondition(ctx context.Context, tableName, updateExpression, conditionExpression string, key, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	f.updates = append(f.updates, updateExpression)
	f.conditions = append(f.conditions, conditionExpression)
	return nil, f.updateErr
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	f.deletes++
	return nil
}

func (f *fakeDynamo) ScanItems(ctx context.Context, tableName string, result interface{}) error {
	if f.scan != nil {
		return f.scan(result)
	}
	return nil
}

func (f *fakeDynamo) BatchGetItems(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	return nil, nil
}

func (f *fakeDynamo) BatchWriteItems(ctx context.Context, tableName string, writes []types.WriteRequest) error {
	return nil
}

func newTestChatService(dynamo *fakeDynamo) (*ChatService, *[]time.Duration) {
	cs := NewChatService(dynamo, nil)
	var sleeps []time.Duration
	cs.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return cs, &sleeps
}

func TestSendMessageRetriesTransientFailures(t *testing.T) {
	dynamo := &fakeDynamo{
		putErrs: []error{errors.New("throttled"), errors.New("throttled"), nil},
	}
	cs, sleeps := newTestChatService(dynamo)

	sent, err := cs.SendMessage(context.Background(), models.Message{
		ChatID:   "chat1",
		SenderID: "u1",
		Text:     "hello",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sent.MessageID)
	require.Equal(t, models.MessageTypeText, sent.Type)
	require.Len(t, dynamo.puts, 1)

	// Linear backoff between attempts
	require.Equal(t, []time.Duration{sendRetryBackoff, 2 * sendRetryBackoff}, *sleeps)
}

func TestSendMessageGivesUpAfterRetries(t *testing.T) {
	dynamo := &fakeDynamo{
		putErrs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	cs, sleeps := newTestChatService(dynamo)

	_, err := cs.SendMessage(context.Background(), models.Message{ChatID: "chat1", SenderID: "u1", Text: "hello"})
	require.Error(t, err)
	require.Empty(t, dynamo.puts)
	require.Len(t, *sleeps, sendRetryAttempts-1)
}

func TestMessageTimestampSortsChronologically(t *testing.T) {
	// createdAt is the Messages sort key and the pagination cursor, so the
	// string order must match time order. A variable-width fraction breaks
	// this: ".5" sorts after ".56".
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 500000000, time.UTC)
	t2 := time.Date(2025, 6, 1, 12, 0, 0, 560000000, time.UTC)
	require.True(t, t1.Before(t2))

	s1 := t1.Format(MessageTimestampLayout)
	s2 := t2.Format(MessageTimestampLayout)
	require.Less(t, s1, s2)
}

func TestSendMessageStampsFixedWidthTimestamp(t *testing.T) {
	cs, _ := newTestChatService(&fakeDynamo{})

	sent, err := cs.SendMessage(context.Background(), models.Message{ChatID: "chat1", SenderID: "u1", Text: "hi"})
	require.NoError(t, err)

	parsed, perr := time.Parse(MessageTimestampLayout, sent.CreatedAt)
	require.NoError(t, perr)
	require.False(t, parsed.IsZero())
	require.Len(t, sent.CreatedAt, len("2025-06-01T12:00:00.000000000Z"))
}

func TestSendMessageRejectsMissingIdentity(t *testing.T) {
	cs, _ := newTestChatService(&fakeDynamo{})

	_, err := cs.SendMessage(context.Background(), models.Message{Text: "orphan"})
	require.Error(t, err)
}

func TestSendMessageUpdatesPreviewAndClearsTyping(t *testing.T) {
	dynamo := &fakeDynamo{}
	cs, _ := newTestChatService(dynamo)

	_, err := cs.SendMessage(context.Background(), models.Message{ChatID: "chat1", SenderID: "u1", Type: models.MessageTypeImage})
	require.NoError(t, err)

	require.Contains(t, dynamo.updates, "SET lastMessageText = :text, lastMessageTimestamp = :ts")
	require.Contains(t, dynamo.updates, "REMOVE typing.#userId")
}

func TestEnsureDMChatCreatesOnFirstUse(t *testing.T) {
	dynamo := &fakeDynamo{}
	cs, _ := newTestChatService(dynamo)

	chat, err := cs.EnsureDMChat(context.Background(), "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice_bob", chat.ID)
	require.Equal(t, models.ChatTypeDM, chat.Type)
	require.Len(t, dynamo.puts, 1)
}

func TestEnsureDMChatReturnsExisting(t *testing.T) {
	existing := models.Chat{ID: "alice_bob", Type: models.ChatTypeDM, Participants: []string{"alice", "bob"}}
	item, err := attributevalue.MarshalMap(existing)
	require.NoError(t, err)

	dynamo := &fakeDynamo{getResult: item}
	cs, _ := newTestChatService(dynamo)

	chat, err := cs.EnsureDMChat(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "alice_bob", chat.ID)
	require.Empty(t, dynamo.puts)
}

func TestGetLatestMessagesReturnsAscending(t *testing.T) {
	newest := models.Message{ChatID: "chat1", CreatedAt: "2025-06-01T12:02:00Z", MessageID: "m3", SenderID: "u1"}
	middle := models.Message{ChatID: "chat1", CreatedAt: "2025-06-01T12:01:00Z", MessageID: "m2", SenderID: "u2"}
	oldest := models.Message{ChatID: "chat1", CreatedAt: "2025-06-01T12:00:00Z", MessageID: "m1", SenderID: "u1"}

	var items []map[string]types.AttributeValue
	for _, m := range []models.Message{newest, middle, oldest} {
		item, err := attributevalue.MarshalMap(m)
		require.NoError(t, err)
		items = append(items, item)
	}

	dynamo := &fakeDynamo{queryResults: items}
	cs, _ := newTestChatService(dynamo)

	messages, err := cs.GetLatestMessages(context.Background(), "chat1", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "m1", messages[0].MessageID)
	require.Equal(t, "m3", messages[2].MessageID)
}

func TestLeaveChatDeletesWhenLastParticipant(t *testing.T) {
	chat := models.Chat{ID: "act1", Type: models.ChatTypeActivityGroup, Participants: []string{"u1"}}
	item, err := attributevalue.MarshalMap(chat)
	require.NoError(t, err)

	dynamo := &fakeDynamo{getResult: item}
	cs, _ := newTestChatService(dynamo)

	require.NoError(t, cs.LeaveChat(context.Background(), "act1", "u1"))
	require.Equal(t, 1, dynamo.deletes)
}

func TestLeaveChatRemovesParticipant(t *testing.T) {
	chat := models.Chat{ID: "act1", Type: models.ChatTypeActivityGroup, Participants: []string{"u1", "u2"}}
	item, err := attributevalue.MarshalMap(chat)
	require.NoError(t, err)

	dynamo := &fakeDynamo{getResult: item}
	cs, _ := newTestChatService(dynamo)

	require.NoError(t, cs.LeaveChat(context.Background(), "act1", "u1"))
	require.Zero(t, dynamo.deletes)
	require.Contains(t, dynamo.updates, "DELETE participants :uid REMOVE typing.#userId, reads.#userId")
}

func TestLeaveChatAlreadyGone(t *testing.T) {
	cs, _ := newTestChatService(&fakeDynamo{})
	require.NoError(t, cs.LeaveChat(context.Background(), "gone", "u1"))
}

func TestReactionExpressions(t *testing.T) {
	dynamo := &fakeDynamo{}
	cs, _ := newTestChatService(dynamo)

	require.NoError(t, cs.AddReaction(context.Background(), "chat1", "2025-06-01T12:00:00Z", "u1", "🔥"))
	require.NoError(t, cs.RemoveReaction(context.Background(), "chat1", "2025-06-01T12:00:00Z", "u1"))

	require.Equal(t, []string{"SET reactions.#userId = :emoji", "REMOVE reactions.#userId"}, dynamo.updates)
}
