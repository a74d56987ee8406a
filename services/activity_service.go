package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"sportspal_server/models"
	"sportspal_server/utils"
)

// ActivityRepository is the remote activity surface the synchronization
// context depends on
type ActivityRepository interface {
	FetchAll(ctx context.Context) ([]models.Activity, error)
	FetchJoinedIDs(ctx context.Context, userID string) ([]string, error)
	Join(ctx context.Context, activityID, userID string, maxParticipants int) error
	Leave(ctx context.Context, activityID, userID string) error
	Create(ctx context.Context, activity models.Activity) error
	Delete(ctx context.Context, activityID string) error
	FetchUsersByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// ActivityService reads and writes activity documents
type ActivityService struct {
	Dynamo DynamoAPI
	Chat   *ChatService
}

var _ ActivityRepository = (*ActivityService)(nil)

// FetchAll returns every activity document
func (as *ActivityService) FetchAll(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := as.Dynamo.ScanItems(ctx, models.ActivitiesTable, &activities); err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	// Malformed documents are rejected at the boundary instead of defaulting
	valid := activities[:0]
	for i := range activities {
		if err := activities[i].Validate(); err != nil {
			log.Printf("⚠️ Skipping malformed activity document: %v", err)
			continue
		}
		valid = append(valid, activities[i])
	}
	return valid, nil
}

// FetchJoinedIDs returns the ids of activities whose joined set contains the
// user. This backs the joined-activities view the sync context keeps live.
func (as *ActivityService) FetchJoinedIDs(ctx context.Context, userID string) ([]string, error) {
	activities, err := as.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for i := range activities {
		if activities[i].HasParticipant(userID) {
			ids = append(ids, activities[i].ID)
		}
	}
	return ids, nil
}

// Join adds the user to the activity's joined set. The write is a single
// conditional update: it fails with KindConditionFailed when the activity is
// already at capacity or the user is already in the set, so two devices
// racing for the last slot cannot overshoot maxParticipants.
func (as *ActivityService) Join(ctx context.Context, activityID, userID string, maxParticipants int) error {
	log.Printf("➕ User %s joining activity %s", userID, activityID)

	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: activityID},
	}
	updateExpression := "ADD joinedUserIds :uid, joinedCount :one"
	conditionExpression := "joinedCount < :max AND (attribute_not_exists(joinedUserIds) OR NOT contains(joinedUserIds, :uidStr))"
	expressionValues := map[string]types.AttributeValue{
		":uid":    &types.AttributeValueMemberSS{Value: []string{userID}},
		":uidStr": &types.AttributeValueMemberS{Value: userID},
		":one":    &types.AttributeValueMemberN{Value: "1"},
		":max":    &types.AttributeValueMemberN{Value: strconv.Itoa(maxParticipants)},
	}

	_, err := as.Dynamo.UpdateItemWithCondition(ctx, models.ActivitiesTable, updateExpression, conditionExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to join activity %s: %w", activityID, err)
	}

	// Joining the activity also joins its group chat. A rejected participant
	// update here is an expected race (the chat may be mid-deletion).
	if err := as.Chat.AddParticipant(ctx, activityID, userID); err != nil && !IsExpectedRace(err) {
		log.Printf("⚠️ Joined activity %s but failed to join its chat: %v", activityID, err)
	}

	return nil
}

// Leave removes the user from the activity's joined set and from the
// associated chat's participant list
func (as *ActivityService) Leave(ctx context.Context, activityID, userID string) error {
	log.Printf("➖ User %s leaving activity %s", userID, activityID)

	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: activityID},
	}
	updateExpression := "DELETE joinedUserIds :uid ADD joinedCount :minusOne"
	conditionExpression := "contains(joinedUserIds, :uidStr)"
	expressionValues := map[string]types.AttributeValue{
		":uid":      &types.AttributeValueMemberSS{Value: []string{userID}},
		":uidStr":   &types.AttributeValueMemberS{Value: userID},
		":minusOne": &types.AttributeValueMemberN{Value: "-1"},
	}

	_, err := as.Dynamo.UpdateItemWithCondition(ctx, models.ActivitiesTable, updateExpression, conditionExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to leave activity %s: %w", activityID, err)
	}

	if err := as.Chat.RemoveParticipant(ctx, activityID, userID); err != nil && !IsExpectedRace(err) {
		log.Printf("⚠️ Left activity %s but failed to leave its chat: %v", activityID, err)
	}

	return nil
}

// Create inserts a new activity document and its group chat
func (as *ActivityService) Create(ctx context.Context, activity models.Activity) error {
	if err := activity.Validate(); err != nil {
		return fmt.Errorf("refusing to create invalid activity: %w", err)
	}

	if err := as.Dynamo.PutItem(ctx, models.ActivitiesTable, activity); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	chat := models.Chat{
		ID:           activity.ID, // one chat per activity, same id
		Type:         models.ChatTypeActivityGroup,
		ActivityID:   activity.ID,
		Title:        activity.Activity,
		Participants: []string{activity.CreatorID},
	}
	if err := as.Chat.CreateChat(ctx, chat); err != nil {
		log.Printf("⚠️ Created activity %s but failed to create its chat: %v", activity.ID, err)
	}

	log.Printf("✅ Activity %s created by %s", activity.ID, activity.CreatorID)
	return nil
}

// Delete removes an activity document
func (as *ActivityService) Delete(ctx context.Context, activityID string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: activityID},
	}
	if err := as.Dynamo.DeleteItem(ctx, models.ActivitiesTable, key); err != nil {
		return fmt.Errorf("failed to delete activity %s: %w", activityID, err)
	}
	log.Printf("🗑️ Activity %s deleted", activityID)
	return nil
}

// FetchUsersByIDs batch-resolves profiles into an id -> profile map, used to
// attach creator display names to activity lists
func (as *ActivityService) FetchUsersByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	if len(ids) == 0 {
		return map[string]models.Profile{}, nil
	}

	// Dedupe before building the batch request
	seen := make(map[string]bool, len(ids))
	var keys []map[string]types.AttributeValue
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, map[string]types.AttributeValue{
			"uid": &types.AttributeValueMemberS{Value: id},
		})
	}

	items, err := as.Dynamo.BatchGetItems(ctx, models.UserProfilesTable, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch profiles: %w", err)
	}

	profiles := make(map[string]models.Profile, len(items))
	for _, item := range items {
		uid := utils.ExtractString(item, "uid")
		if uid == "" {
			continue
		}
		var profile models.Profile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			log.Printf("⚠️ Failed to parse profile document for %s: %v", uid, err)
			continue
		}
		profiles[uid] = profile
	}
	return profiles, nil
}
