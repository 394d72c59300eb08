package trello

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/pressroomhq/printops_backend/config"
)

// SignatureHeader carries the board service's HMAC of each delivery.
const SignatureHeader = "X-Trello-Webhook"

var (
	// ErrUnauthorized means the signature header is absent, malformed, or
	// does not match the payload.
	ErrUnauthorized = errors.New("webhook signature mismatch")
	// ErrUnconfigured means the webhook secret or callback URL is not
	// provisioned; operator-fixable, surfaced as a 500.
	ErrUnconfigured = errors.New("webhook secret not configured")
)

// VerifySignature authenticates a webhook delivery before any JSON parsing.
//
// The signed message is the registered callback URL concatenated with the
// exact raw body bytes; re-encoding the body would change the digest, so
// callers must pass the bytes as read off the wire.
func VerifySignature(body []byte, signature string, cfg config.TrelloConfig) error {
	if cfg.WebhookSecret == "" || cfg.CallbackURL == "" {
		return ErrUnconfigured
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrUnauthorized
	}
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrUnauthorized
	}

	mac := hmac.New(sha1.New, []byte(cfg.WebhookSecret))
	mac.Write([]byte(cfg.CallbackURL))
	mac.Write(body)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return ErrUnauthorized
	}
	return nil
}

// Sign computes the signature the verifier expects. Used by tests and by the
// local webhook replay tooling.
func Sign(body []byte, cfg config.TrelloConfig) string {
	mac := hmac.New(sha1.New, []byte(cfg.WebhookSecret))
	mac.Write([]byte(cfg.CallbackURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
