package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/workflow"
)

// Client fetches card data from the board service. All calls run with a
// bounded timeout; a timeout is a retryable failure, never proof that the
// upstream state did not change.
type Client struct {
	baseURL  string
	apiKey   string
	apiToken string
	http     *http.Client
}

func NewClient(cfg config.TrelloConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("trello api key/token is empty")
	}
	timeoutSec := 10
	if v := strings.TrimSpace(os.Getenv("TRELLO_HTTP_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutSec = n
		}
	}
	return &Client{
		baseURL:  cfg.APIBaseURL,
		apiKey:   cfg.APIKey,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

// DescriptionFetcher adapts the client for the deduction workflow. Safe on a
// nil client (unconfigured credentials): the fetch fails at deduction time
// instead of panicking at startup.
func (c *Client) DescriptionFetcher() workflow.CardTextFetcher {
	return func(ctx context.Context, cardId string) (string, error) {
		if c == nil {
			return "", errors.New("trello api client not configured")
		}
		return c.GetCardDescription(ctx, cardId)
	}
}

// GetCardDescription returns the current description text of a card.
// The webhook payload does not carry the description, so the deduction path
// re-reads it at processing time.
func (c *Client) GetCardDescription(ctx context.Context, cardId string) (string, error) {
	params := url.Values{}
	params.Set("fields", "desc")
	params.Set("key", c.apiKey)
	params.Set("token", c.apiToken)
	endpoint := fmt.Sprintf("%s/cards/%s?%s", c.baseURL, url.PathEscape(cardId), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("trello api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Desc string `json:"desc"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return parsed.Desc, nil
}
