package utils

import "testing"

func TestParseDeepLink(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		wantType string
		wantID   string
		wantErr  bool
	}{
		{"https activity", "https://sportspal.app/activity/abc123", DeepLinkActivity, "abc123", false},
		{"https profile", "https://sportspal.app/profile/user-9", DeepLinkProfile, "user-9", false},
		{"https chat", "https://sportspal.app/chat/room_1", DeepLinkChat, "room_1", false},
		{"custom scheme", "sportspal://activity/abc123", DeepLinkActivity, "abc123", false},
		{"query param wins over path", "https://wrapper.example/open?activityId=xyz", DeepLinkActivity, "xyz", false},
		{"userId query param", "https://sportspal.app/?userId=u42", DeepLinkProfile, "u42", false},
		{"chatId query param", "https://sportspal.app/anything/else?chatId=c7", DeepLinkChat, "c7", false},
		{"nested path uses last segments", "https://sportspal.app/app/activity/abc123", DeepLinkActivity, "abc123", false},
		{"unknown type", "https://sportspal.app/settings/abc", "", "", true},
		{"missing id", "https://sportspal.app/activity/", "", "", true},
		{"bare host", "https://sportspal.app", "", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			link, err := ParseDeepLink(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDeepLink(%q) succeeded, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDeepLink(%q) returned error: %v", tc.raw, err)
			}
			if link.Type != tc.wantType || link.ID != tc.wantID {
				t.Errorf("ParseDeepLink(%q) = {%s %s}, want {%s %s}", tc.raw, link.Type, link.ID, tc.wantType, tc.wantID)
			}
		})
	}
}
