package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"sportspal_server/models"
)

// ProfileService manages profile documents, friend connections and push
// tokens
type ProfileService struct {
	Dynamo   DynamoAPI
	Notifier *NotificationService
}

// AddProfile creates or replaces a user profile
func (ps *ProfileService) AddProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	if profile.UID == "" {
		return nil, fmt.Errorf("profile is missing a uid")
	}
	profile.UsernameLower = strings.ToLower(profile.Username)

	if err := ps.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile retrieves a user profile by id
func (ps *ProfileService) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}

	item, err := ps.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", uid, err)
	}
	return &profile, nil
}

// SearchByUsername finds profiles whose lowercased username starts with the
// query
func (ps *ProfileService) SearchByUsername(ctx context.Context, query string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := ps.Dynamo.ScanItems(ctx, models.UserProfilesTable, &profiles); err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	q := strings.ToLower(query)
	var matches []models.Profile
	for i := range profiles {
		if strings.HasPrefix(profiles[i].UsernameLower, q) {
			matches = append(matches, profiles[i])
		}
	}
	return matches, nil
}

// SendFriendRequest records the request on the sender and notifies the
// target
func (ps *ProfileService) SendFriendRequest(ctx context.Context, fromUID, toUID string) error {
	if fromUID == toUID {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	if err := ps.addToSet(ctx, fromUID, "requestsSent", toUID); err != nil {
		return fmt.Errorf("failed to record friend request: %w", err)
	}

	if ps.Notifier != nil {
		ps.Notifier.NotifyUser(ctx, models.Notification{
			UserID:     toUID,
			Type:       models.NotificationTypeFriendRequest,
			FromUserID: fromUID,
		}, "New friend request", "You have a new friend request")
	}

	log.Printf("🤝 Friend request sent %s -> %s", fromUID, toUID)
	return nil
}

// AcceptFriendRequest makes the connection mutual and clears the pending
// request
func (ps *ProfileService) AcceptFriendRequest(ctx context.Context, uid, requesterUID string) error {
	// Both sides gain a friend entry; the requester's pending entry goes away
	if err := ps.addToSet(ctx, uid, "friends", requesterUID); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	if err := ps.addToSet(ctx, requesterUID, "friends", uid); err != nil {
		return fmt.Errorf("failed to add friend on requester side: %w", err)
	}
	if err := ps.removeFromSet(ctx, requesterUID, "requestsSent", uid); err != nil && !IsExpectedRace(err) {
		log.Printf("⚠️ Failed to clear pending request %s -> %s: %v", requesterUID, uid, err)
	}

	if ps.Notifier != nil {
		ps.Notifier.NotifyUser(ctx, models.Notification{
			UserID:     requesterUID,
			Type:       models.NotificationTypeFriendAccept,
			FromUserID: uid,
		}, "Friend request accepted", "Your friend request was accepted")
	}

	log.Printf("✅ Friend request accepted: %s and %s are now friends", uid, requesterUID)
	return nil
}

// DeclineFriendRequest clears the pending request without connecting
func (ps *ProfileService) DeclineFriendRequest(ctx context.Context, uid, requesterUID string) error {
	if err := ps.removeFromSet(ctx, requesterUID, "requestsSent", uid); err != nil && !IsExpectedRace(err) {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// RemoveFriend severs the connection on both sides
func (ps *ProfileService) RemoveFriend(ctx context.Context, uid, friendUID string) error {
	if err := ps.removeFromSet(ctx, uid, "friends", friendUID); err != nil && !IsExpectedRace(err) {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if err := ps.removeFromSet(ctx, friendUID, "friends", uid); err != nil && !IsExpectedRace(err) {
		return fmt.Errorf("failed to remove friend on other side: %w", err)
	}
	return nil
}

// RegisterPushToken stores a device push token on the profile. tokenType is
// "expo" or "fcm".
func (ps *ProfileService) RegisterPushToken(ctx context.Context, uid, tokenType, token string) error {
	var field string
	switch tokenType {
	case "expo":
		field = "expoPushTokens"
	case "fcm":
		field = "fcmPushTokens"
	default:
		return fmt.Errorf("unknown push token type: %s", tokenType)
	}

	// Tokens live in a plain list; duplicates are filtered before appending
	profile, err := ps.GetProfile(ctx, uid)
	if err != nil {
		return err
	}
	existing := profile.ExpoPushTokens
	if field == "fcmPushTokens" {
		existing = profile.FCMPushTokens
	}
	for _, t := range existing {
		if t == token {
			return nil
		}
	}

	updateExpression := fmt.Sprintf("SET %s = list_append(if_not_exists(%s, :empty), :token)", field, field)
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	expressionValues := map[string]types.AttributeValue{
		":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		":token": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: token}}},
	}

	_, err = ps.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to register %s push token: %w", tokenType, err)
	}
	return nil
}

// FetchBlockedIDs returns the user's blocked-id list
func (ps *ProfileService) FetchBlockedIDs(ctx context.Context, uid string) ([]string, error) {
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	item, err := ps.Dynamo.GetItem(ctx, models.BlockedUsersTable, key)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil // nobody blocked yet
		}
		return nil, err
	}

	var blocked models.BlockedUsers
	if err := attributevalue.UnmarshalMap(item, &blocked); err != nil {
		return nil, fmt.Errorf("failed to parse blocked users for %s: %w", uid, err)
	}
	return blocked.BlockedIDs, nil
}

// BlockUser adds a user to the acting user's blocked set
func (ps *ProfileService) BlockUser(ctx context.Context, uid, targetUID string) error {
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	updateExpression := "ADD blockedIds :target"
	expressionValues := map[string]types.AttributeValue{
		":target": &types.AttributeValueMemberSS{Value: []string{targetUID}},
	}

	_, err := ps.Dynamo.UpdateItem(ctx, models.BlockedUsersTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}
	return nil
}

// UnblockUser removes a user from the acting user's blocked set
func (ps *ProfileService) UnblockUser(ctx context.Context, uid, targetUID string) error {
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	updateExpression := "DELETE blockedIds :target"
	expressionValues := map[string]types.AttributeValue{
		":target": &types.AttributeValueMemberSS{Value: []string{targetUID}},
	}

	_, err := ps.Dynamo.UpdateItem(ctx, models.BlockedUsersTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to unblock user: %w", err)
	}
	return nil
}

// addToSet appends to a profile string-set attribute
func (ps *ProfileService) addToSet(ctx context.Context, uid, attribute, value string) error {
	updateExpression := fmt.Sprintf("ADD %s :value", attribute)
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	expressionValues := map[string]types.AttributeValue{
		":value": &types.AttributeValueMemberSS{Value: []string{value}},
	}

	_, err := ps.Dynamo.UpdateItemWithCondition(ctx, models.UserProfilesTable, updateExpression, "attribute_exists(uid)", key, expressionValues, nil)
	return err
}

// removeFromSet removes from a profile string-set attribute
func (ps *ProfileService) removeFromSet(ctx context.Context, uid, attribute, value string) error {
	updateExpression := fmt.Sprintf("DELETE %s :value", attribute)
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	expressionValues := map[string]types.AttributeValue{
		":value": &types.AttributeValueMemberSS{Value: []string{value}},
	}

	_, err := ps.Dynamo.UpdateItemWithCondition(ctx, models.UserProfilesTable, updateExpression, "attribute_exists(uid)", key, expressionValues, nil)
	return err
}
