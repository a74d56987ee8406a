package models

import "testing"

func TestDMChatID(t *testing.T) {
	if got := DMChatID("bob", "alice"); got != "alice_bob" {
		t.Errorf("DMChatID(bob, alice) = %q, want alice_bob", got)
	}
	// Argument order must not matter
	if DMChatID("alice", "bob") != DMChatID("bob", "alice") {
		t.Error("DMChatID is not symmetric")
	}
}

func TestChatValidate(t *testing.T) {
	cases := []struct {
		name    string
		chat    Chat
		wantErr bool
	}{
		{"valid dm", Chat{ID: "a_b", Type: ChatTypeDM, Participants: []string{"a", "b"}}, false},
		{"valid activity group", Chat{ID: "act1", Type: ChatTypeActivityGroup, Participants: []string{"a"}}, false},
		{"missing id", Chat{Type: ChatTypeDM, Participants: []string{"a", "b"}}, true},
		{"unknown type", Chat{ID: "x", Type: "broadcast"}, true},
		{"dm with one participant", Chat{ID: "a", Type: ChatTypeDM, Participants: []string{"a"}}, true},
		{"dm with three participants", Chat{ID: "x", Type: ChatTypeDM, Participants: []string{"a", "b", "c"}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.chat.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
