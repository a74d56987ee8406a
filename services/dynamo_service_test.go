package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

func deleteRequest(id string) types.WriteRequest {
	return types.WriteRequest{
		DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			},
		},
	}
}

func TestDrainBatchWritesRetriesUnprocessed(t *testing.T) {
	var submitted [][]types.WriteRequest
	call := func(ctx context.Context, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
		batch := input.RequestItems["Notifications"]
		submitted = append(submitted, batch)

		// First call leaves the last request unprocessed
		if len(submitted) == 1 {
			return &dynamodb.BatchWriteItemOutput{
				UnprocessedItems: map[string][]types.WriteRequest{
					"Notifications": batch[len(batch)-1:],
				},
			}, nil
		}
		return &dynamodb.BatchWriteItemOutput{}, nil
	}

	writes := []types.WriteRequest{deleteRequest("n1"), deleteRequest("n2"), deleteRequest("n3")}
	err := drainBatchWrites(context.Background(), "Notifications", writes, call)
	require.NoError(t, err)

	require.Len(t, submitted, 2)
	require.Len(t, submitted[0], 3)
	require.Len(t, submitted[1], 1)
	require.Equal(t, writes[2], submitted[1][0])
}

func TestDrainBatchWritesGivesUpEventually(t *testing.T) {
	calls := 0
	call := func(ctx context.Context, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
		calls++
		return &dynamodb.BatchWriteItemOutput{
			UnprocessedItems: map[string][]types.WriteRequest{
				"Notifications": input.RequestItems["Notifications"],
			},
		}, nil
	}

	err := drainBatchWrites(context.Background(), "Notifications", []types.WriteRequest{deleteRequest("n1")}, call)
	require.Error(t, err)
	require.Equal(t, 4, calls)
}

func TestDrainBatchWritesSurfacesCallError(t *testing.T) {
	call := func(ctx context.Context, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
		return nil, errors.New("throughput exceeded")
	}

	err := drainBatchWrites(context.Background(), "Notifications", []types.WriteRequest{deleteRequest("n1")}, call)
	require.Error(t, err)
}
