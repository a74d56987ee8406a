package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"

	"sportspal_server/models"
)

// AccountService runs the account-deletion cascade. Steps run in a fixed
// order; a failed storage purge is logged and the remaining steps still run,
// so a half-deleted account converges on retry.
type AccountService struct {
	Dynamo     DynamoAPI
	Activities *ActivityService
	Chats      *ChatService
	Profiles   *ProfileService
	authClient *auth.Client
}

// NewAccountService wires the cascade. A missing Firebase credential leaves
// the final auth-account deletion disabled.
func NewAccountService(ctx context.Context, dynamo DynamoAPI, activities *ActivityService, chats *ChatService, profiles *ProfileService, firebaseProjectID string) *AccountService {
	as := &AccountService{
		Dynamo:     dynamo,
		Activities: activities,
		Chats:      chats,
		Profiles:   profiles,
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: firebaseProjectID})
	if err != nil {
		log.Errorf("initializing firebase app: %s", err)
		return as
	}
	as.authClient, err = firebaseApp.Auth(ctx)
	if err != nil {
		log.Errorf("initializing auth client: %s", err)
	}
	return as
}

// DeleteAccount removes every trace of a user, in order: owned activities,
// memberships, chat participation, notifications, friend references, the
// profile document, namespaced storage objects, and finally the auth
// account.
func (as *AccountService) DeleteAccount(ctx context.Context, uid string) error {
	log.WithField("uid", uid).Info("starting account deletion cascade")

	if err := as.deleteActivities(ctx, uid); err != nil {
		return fmt.Errorf("activity cleanup failed: %w", err)
	}
	if err := as.leaveChats(ctx, uid); err != nil {
		return fmt.Errorf("chat cleanup failed: %w", err)
	}
	if err := as.deleteNotifications(ctx, uid); err != nil {
		return fmt.Errorf("notification cleanup failed: %w", err)
	}
	if err := as.scrubFriendReferences(ctx, uid); err != nil {
		return fmt.Errorf("friend reference cleanup failed: %w", err)
	}

	// Profile and blocked-list documents
	profileKey := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	if err := as.Dynamo.DeleteItem(ctx, models.UserProfilesTable, profileKey); err != nil {
		return fmt.Errorf("profile deletion failed: %w", err)
	}
	if err := as.Dynamo.DeleteItem(ctx, models.BlockedUsersTable, profileKey); err != nil {
		log.Errorf("blocked-list deletion failed for %s: %s", uid, err)
	}

	// Storage purge is best-effort: partial failure does not abort the rest
	for _, namespace := range []string{"profile-pics", "chat-images", "audio-messages", "gpx", "debug"} {
		prefix := namespace + "/" + uid
		if err := DeleteObjectsWithPrefix(ctx, prefix); err != nil {
			log.Errorf("storage purge failed for %s: %s", prefix, err)
		}
	}

	if as.authClient != nil {
		if err := as.authClient.DeleteUser(ctx, uid); err != nil {
			return fmt.Errorf("auth account deletion failed: %w", err)
		}
	}

	log.WithField("uid", uid).Info("account deletion cascade complete")
	return nil
}

// deleteActivities removes activities the user created and their membership
// in everyone else's
func (as *AccountService) deleteActivities(ctx context.Context, uid string) error {
	activities, err := as.Activities.FetchAll(ctx)
	if err != nil {
		return err
	}

	for i := range activities {
		activity := &activities[i]
		if activity.CreatorID == uid {
			if err := as.Chats.DeleteChat(ctx, activity.ID); err != nil && !IsExpectedRace(err) {
				log.Errorf("failed to delete chat for owned activity %s: %s", activity.ID, err)
			}
			if err := as.Activities.Delete(ctx, activity.ID); err != nil {
				return err
			}
			continue
		}
		if activity.HasParticipant(uid) {
			if err := as.Activities.Leave(ctx, activity.ID, uid); err != nil && !IsExpectedRace(err) {
				log.Errorf("failed to leave activity %s: %s", activity.ID, err)
			}
		}
	}
	return nil
}

// leaveChats walks every chat the user participates in, deleting chats that
// drop to zero members
func (as *AccountService) leaveChats(ctx context.Context, uid string) error {
	var chats []models.Chat
	if err := as.Dynamo.ScanItems(ctx, models.ChatsTable, &chats); err != nil {
		return err
	}

	for i := range chats {
		if !chats[i].HasParticipant(uid) {
			continue
		}
		if err := as.Chats.LeaveChat(ctx, chats[i].ID, uid); err != nil && !IsExpectedRace(err) {
			log.Errorf("failed to leave chat %s: %s", chats[i].ID, err)
		}
	}
	return nil
}

// deleteNotifications removes notifications the user received or sent
func (as *AccountService) deleteNotifications(ctx context.Context, uid string) error {
	var notifications []models.Notification
	if err := as.Dynamo.ScanItems(ctx, models.NotificationsTable, &notifications); err != nil {
		return err
	}

	var writes []types.WriteRequest
	for i := range notifications {
		n := &notifications[i]
		if n.UserID != uid && n.FromUserID != uid {
			continue
		}
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: n.ID},
				},
			},
		})
	}
	if len(writes) == 0 {
		return nil
	}
	return as.Dynamo.BatchWriteItems(ctx, models.NotificationsTable, writes)
}

// scrubFriendReferences removes the user from other profiles' friends and
// requestsSent sets
func (as *AccountService) scrubFriendReferences(ctx context.Context, uid string) error {
	var profiles []models.Profile
	if err := as.Dynamo.ScanItems(ctx, models.UserProfilesTable, &profiles); err != nil {
		return err
	}

	for i := range profiles {
		p := &profiles[i]
		if p.UID == uid {
			continue
		}
		if p.HasFriend(uid) {
			if err := as.Profiles.removeFromSet(ctx, p.UID, "friends", uid); err != nil && !IsExpectedRace(err) {
				log.Errorf("failed to scrub friend entry on %s: %s", p.UID, err)
			}
		}
		for _, requested := range p.RequestsSent {
			if requested == uid {
				if err := as.Profiles.removeFromSet(ctx, p.UID, "requestsSent", uid); err != nil && !IsExpectedRace(err) {
					log.Errorf("failed to scrub pending request on %s: %s", p.UID, err)
				}
				break
			}
		}
	}
	return nil
}
