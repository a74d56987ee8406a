package utils

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestExtractString(t *testing.T) {
	item := map[string]types.AttributeValue{
		"uid":   &types.AttributeValueMemberS{Value: "u1"},
		"count": &types.AttributeValueMemberN{Value: "3"},
	}

	if got := ExtractString(item, "uid"); got != "u1" {
		t.Errorf("ExtractString(uid) = %q, want u1", got)
	}
	if got := ExtractString(item, "count"); got != "" {
		t.Errorf("ExtractString on a number attribute = %q, want empty", got)
	}
	if got := ExtractString(item, "missing"); got != "" {
		t.Errorf("ExtractString on a missing field = %q, want empty", got)
	}
}

func TestExtractInt(t *testing.T) {
	item := map[string]types.AttributeValue{
		"joinedCount": &types.AttributeValueMemberN{Value: "4"},
		"bad":         &types.AttributeValueMemberN{Value: "four"},
	}

	if got := ExtractInt(item, "joinedCount"); got != 4 {
		t.Errorf("ExtractInt = %d, want 4", got)
	}
	if got := ExtractInt(item, "bad"); got != 0 {
		t.Errorf("ExtractInt on unparseable number = %d, want 0", got)
	}
	if got := ExtractInt(item, "missing"); got != 0 {
		t.Errorf("ExtractInt on missing field = %d, want 0", got)
	}
}

func TestExtractStringSet(t *testing.T) {
	item := map[string]types.AttributeValue{
		"set": &types.AttributeValueMemberSS{Value: []string{"a", "b"}},
		"legacyList": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: "a"},
			&types.AttributeValueMemberS{Value: "b"},
		}},
	}

	if got := ExtractStringSet(item, "set"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ExtractStringSet(set) = %v", got)
	}
	if got := ExtractStringSet(item, "legacyList"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("ExtractStringSet(legacyList) = %v", got)
	}
	if got := ExtractStringSet(item, "missing"); got != nil {
		t.Errorf("ExtractStringSet(missing) = %v, want nil", got)
	}
}
