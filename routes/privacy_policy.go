package routes

import (
	"fmt"
	"net/http"
)

// PrivacyPolicyHandler serves the Privacy Policy content
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>Welcome to SportsPal. This Privacy Policy outlines how we collect, use, and protect your data.</p>
		<p>Activity, chat, and location data is used only to connect you with nearby sports partners.</p>
		<p>Contact us at <a href="mailto:support@sportspal.app">support@sportspal.app</a> for questions.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
