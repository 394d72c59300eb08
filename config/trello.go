package config

import (
	"os"
	"strings"
)

// Trello webhook + API credentials.
//
// TRELLO_WEBHOOK_SECRET  - board secret used to HMAC-sign webhook deliveries
// TRELLO_CALLBACK_URL    - the exact callback URL registered with the board;
// it is part of the signed message, so it must match byte-for-byte what was
// registered
// TRELLO_API_KEY / TRELLO_API_TOKEN - used for outbound card fetches
type TrelloConfig struct {
	WebhookSecret string
	CallbackURL   string
	APIKey        string
	APIToken      string
	APIBaseURL    string
}

func GetTrelloConfig() TrelloConfig {
	baseURL := strings.TrimSpace(os.Getenv("TRELLO_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.trello.com/1"
	}
	return TrelloConfig{
		WebhookSecret: strings.TrimSpace(os.Getenv("TRELLO_WEBHOOK_SECRET")),
		CallbackURL:   strings.TrimSpace(os.Getenv("TRELLO_CALLBACK_URL")),
		APIKey:        strings.TrimSpace(os.Getenv("TRELLO_API_KEY")),
		APIToken:      strings.TrimSpace(os.Getenv("TRELLO_API_TOKEN")),
		APIBaseURL:    strings.TrimRight(baseURL, "/"),
	}
}
