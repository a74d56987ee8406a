package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sportspal_server/models"
)

func newTestActivityService(dynamo *fakeDynamo) *ActivityService {
	chats, _ := newTestChatService(dynamo)
	return &ActivityService{Dynamo: dynamo, Chat: chats}
}

func TestFetchAllSkipsMalformedDocuments(t *testing.T) {
	dynamo := &fakeDynamo{
		scan: func(result interface{}) error {
			activities := result.(*[]models.Activity)
			*activities = []models.Activity{
				{ID: "a1", Activity: "Tennis"},
				{ID: "", Activity: "no id"},
				{ID: "a2", Activity: "Running"},
				{ID: "a3", Activity: ""},
			}
			return nil
		},
	}
	svc := newTestActivityService(dynamo)

	activities, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)
	require.Equal(t, "a1", activities[0].ID)
	require.Equal(t, "a2", activities[1].ID)
}

func TestFetchJoinedIDs(t *testing.T) {
	dynamo := &fakeDynamo{
		scan: func(result interface{}) error {
			activities := result.(*[]models.Activity)
			*activities = []models.Activity{
				{ID: "a1", Activity: "Tennis", JoinedUserIDs: []string{"u1", "u2"}},
				{ID: "a2", Activity: "Running", JoinedUserIDs: []string{"u2"}},
				{ID: "a3", Activity: "Cycling", JoinedUserIDs: []string{"u1"}},
			}
			return nil
		},
	}
	svc := newTestActivityService(dynamo)

	ids, err := svc.FetchJoinedIDs(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a3"}, ids)
}

func TestJoinIsGuardedByCapacityCondition(t *testing.T) {
	dynamo := &fakeDynamo{}
	svc := newTestActivityService(dynamo)

	require.NoError(t, svc.Join(context.Background(), "a1", "u1", 4))

	// One conditional write guards both the capacity cap and re-join
	require.Equal(t, "ADD joinedUserIds :uid, joinedCount :one", dynamo.updates[0])
	require.Equal(t, "joinedCount < :max AND (attribute_not_exists(joinedUserIds) OR NOT contains(joinedUserIds, :uidStr))", dynamo.conditions[0])

	// The group chat membership follows the activity join
	require.Contains(t, dynamo.updates, "ADD participants :uid")
}

func TestJoinSurfacesLostCapacityRace(t *testing.T) {
	dynamo := &fakeDynamo{
		updateErr: &ServiceError{Kind: KindConditionFailed, Message: "capacity reached"},
	}
	svc := newTestActivityService(dynamo)

	err := svc.Join(context.Background(), "a1", "u1", 2)
	require.Error(t, err)
	require.Equal(t, KindConditionFailed, KindOf(err))
	require.True(t, IsExpectedRace(err))
}

func TestLeaveRequiresMembership(t *testing.T) {
	dynamo := &fakeDynamo{}
	svc := newTestActivityService(dynamo)

	require.NoError(t, svc.Leave(context.Background(), "a1", "u1"))

	require.Equal(t, "DELETE joinedUserIds :uid ADD joinedCount :minusOne", dynamo.updates[0])
	require.Equal(t, "contains(joinedUserIds, :uidStr)", dynamo.conditions[0])
}

func TestCreateActivityCreatesGroupChat(t *testing.T) {
	dynamo := &fakeDynamo{}
	svc := newTestActivityService(dynamo)

	activity := models.Activity{ID: "a1", Activity: "Tennis", CreatorID: "u1", MaxParticipants: 4}
	require.NoError(t, svc.Create(context.Background(), activity))

	require.Len(t, dynamo.puts, 2)
	chat, ok := dynamo.puts[1].(models.Chat)
	require.True(t, ok)
	require.Equal(t, "a1", chat.ID)
	require.Equal(t, models.ChatTypeActivityGroup, chat.Type)
	require.Equal(t, []string{"u1"}, chat.Participants)
}

func TestCreateRejectsInvalidActivity(t *testing.T) {
	dynamo := &fakeDynamo{}
	svc := newTestActivityService(dynamo)

	err := svc.Create(context.Background(), models.Activity{Activity: "Tennis"})
	require.Error(t, err)
	require.Empty(t, dynamo.puts)
}
