package services

import (
	"context"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	log "github.com/sirupsen/logrus"

	"sportspal_server/models"
)

// NotificationService fans out push notifications to the recipients' Expo
// and FCM tokens and records notification documents. It mirrors the hosted
// functions that fire on message and notification creation; failures are
// logged and never surfaced to the triggering write.
type NotificationService struct {
	Dynamo     DynamoAPI
	expoClient *expo.PushClient
	fcmClient  *messaging.Client
}

// NewNotificationService initializes the push clients. A missing Firebase
// credential disables the FCM leg but keeps Expo delivery working.
func NewNotificationService(ctx context.Context, dynamo DynamoAPI, firebaseProjectID string) *NotificationService {
	ns := &NotificationService{
		Dynamo:     dynamo,
		expoClient: expo.NewPushClient(nil),
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: firebaseProjectID})
	if err != nil {
		log.Errorf("initializing firebase app: %s", err)
		return ns
	}
	ns.fcmClient, err = firebaseApp.Messaging(ctx)
	if err != nil {
		log.Errorf("initializing fcm client: %s", err)
	}

	return ns
}

// NotifyNewMessage pushes a chat message to every participant except the
// sender
func (ns *NotificationService) NotifyNewMessage(ctx context.Context, message models.Message) {
	chat, err := ns.fetchChat(ctx, message.ChatID)
	if err != nil {
		log.Errorf("unable to fetch chat %s for notification: %s", message.ChatID, err)
		return
	}

	sender, err := ns.fetchProfile(ctx, message.SenderID)
	senderName := "Someone"
	if err == nil && sender.Username != "" {
		senderName = sender.Username
	}

	title := "New Message from " + senderName
	if chat.Type == models.ChatTypeActivityGroup && chat.Title != "" {
		title = senderName + " in " + chat.Title
	}

	body := message.Text
	if message.Type != models.MessageTypeText {
		body = "Sent you a " + message.Type
	}

	for _, uid := range chat.Participants {
		// Because we should not send notification to the sender
		if uid == message.SenderID {
			continue
		}
		ns.pushToUser(ctx, uid, title, body, map[string]string{
			"category": "chat",
			"chatId":   chat.ID,
		})
	}
}

// NotifyUser records a notification document and pushes it to one recipient.
// Used for friend requests, accepts and activity invites.
func (ns *NotificationService) NotifyUser(ctx context.Context, notification models.Notification, title, body string) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := ns.Dynamo.PutItem(ctx, models.NotificationsTable, notification); err != nil {
		log.Errorf("unable to store notification for %s: %s", notification.UserID, err)
	}

	data := map[string]string{"category": notification.Type}
	if notification.ActivityID != "" {
		data["activityId"] = notification.ActivityID
	}
	ns.pushToUser(ctx, notification.UserID, title, body, data)
}

func (ns *NotificationService) pushToUser(ctx context.Context, uid, title, body string, data map[string]string) {
	profile, err := ns.fetchProfile(ctx, uid)
	if err != nil {
		log.Errorf("unable to resolve push tokens for %s: %s", uid, err)
		return
	}

	ns.pushExpo(profile.ExpoPushTokens, title, body, data)
	ns.pushFCM(ctx, profile.FCMPushTokens, title, body, data)
}

func (ns *NotificationService) pushExpo(tokens []string, title, body string, data map[string]string) {
	expoTokens := []expo.ExponentPushToken{}
	for _, raw := range tokens {
		token, err := expo.NewExponentPushToken(raw)
		if err != nil {
			log.Errorf("invalid expo token: %s", err)
			continue
		}
		expoTokens = append(expoTokens, token)
	}
	if len(expoTokens) == 0 {
		return
	}

	pushMessage := &expo.PushMessage{
		To:       expoTokens,
		Body:     body,
		Sound:    "default",
		Title:    title,
		Priority: expo.HighPriority,
		Data:     data,
	}

	response, err := ns.expoClient.Publish(pushMessage)
	if err != nil {
		log.Error(err)
		return
	}
	if response.ValidateResponse() != nil {
		log.Error(response.PushMessage.To, "failed")
	}
}

func (ns *NotificationService) pushFCM(ctx context.Context, tokens []string, title, body string, data map[string]string) {
	if ns.fcmClient == nil || len(tokens) == 0 {
		return
	}

	_, err := ns.fcmClient.SendMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		log.Errorf("fcm multicast failed: %s", err)
	}
}

func (ns *NotificationService) fetchChat(ctx context.Context, chatID string) (*models.Chat, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: chatID},
	}
	item, err := ns.Dynamo.GetItem(ctx, models.ChatsTable, key)
	if err != nil {
		return nil, err
	}
	var chat models.Chat
	if err := attributevalue.UnmarshalMap(item, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (ns *NotificationService) fetchProfile(ctx context.Context, uid string) (*models.Profile, error) {
	key := map[string]types.AttributeValue{
		"uid": &types.AttributeValueMemberS{Value: uid},
	}
	item, err := ns.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
