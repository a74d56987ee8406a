package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"not found", &ServiceError{Kind: KindNotFound, Message: "missing"}, KindNotFound},
		{"wrapped condition failed", fmt.Errorf("join failed: %w", &ServiceError{Kind: KindConditionFailed}), KindConditionFailed},
		{"cancelled context", context.Canceled, KindCancelled},
		{"wrapped cancellation", fmt.Errorf("fetch: %w", context.Canceled), KindCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsExpectedRace(t *testing.T) {
	if !IsExpectedRace(&ServiceError{Kind: KindPermissionDenied}) {
		t.Error("permission denials are expected races")
	}
	if !IsExpectedRace(&ServiceError{Kind: KindConditionFailed}) {
		t.Error("failed conditions are expected races")
	}
	if IsExpectedRace(&ServiceError{Kind: KindNotFound}) {
		t.Error("not-found is not an expected race")
	}
	if IsExpectedRace(errors.New("network down")) {
		t.Error("plain errors are not expected races")
	}
}
