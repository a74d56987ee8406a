package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// Deep link types recognized by the app
const (
	DeepLinkActivity = "activity"
	DeepLinkProfile  = "profile"
	DeepLinkChat     = "chat"
)

// DeepLink is a parsed navigation target
type DeepLink struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ParseDeepLink parses https://<host>/activity/<id> style URLs and the
// equivalent sportspal:// scheme form into a {type, id} pair. Query-parameter
// fallbacks (?activityId=, ?userId=, ?chatId=) are accepted for third-party
// link wrappers that rewrite paths.
func ParseDeepLink(raw string) (*DeepLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deep link %q: %w", raw, err)
	}

	// Query-parameter forms win over the path so wrapped links resolve even
	// when the wrapper mangles the path.
	q := u.Query()
	if id := q.Get("activityId"); id != "" {
		return &DeepLink{Type: DeepLinkActivity, ID: id}, nil
	}
	if id := q.Get("userId"); id != "" {
		return &DeepLink{Type: DeepLinkProfile, ID: id}, nil
	}
	if id := q.Get("chatId"); id != "" {
		return &DeepLink{Type: DeepLinkChat, ID: id}, nil
	}

	// sportspal://activity/<id> puts the type in the host position
	path := strings.Trim(u.Path, "/")
	segments := strings.Split(path, "/")
	if u.Scheme != "http" && u.Scheme != "https" && u.Host != "" {
		segments = append([]string{u.Host}, segments...)
	}
	if len(segments) >= 2 && segments[len(segments)-1] != "" {
		linkType := segments[len(segments)-2]
		id := segments[len(segments)-1]
		switch linkType {
		case DeepLinkActivity, DeepLinkProfile, DeepLinkChat:
			return &DeepLink{Type: linkType, ID: id}, nil
		}
	}

	return nil, fmt.Errorf("unrecognized deep link: %s", raw)
}
