package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
	"github.com/priyansh-soni/honeypot-agent/pkg/retry"
)

// FinalResult is the intelligence summary delivered to the evaluation
// endpoint when a conversation ends.
type FinalResult struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  model.Intelligence `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// BuildFinalResult assembles the delivery payload from a session
// summary.
func BuildFinalResult(summary model.Summary) FinalResult {
	return FinalResult{
		SessionID:              summary.SessionID,
		ScamDetected:           summary.ScamDetected,
		TotalMessagesExchanged: summary.TurnCount,
		ExtractedIntelligence:  summary.ExtractedIntelligence,
		AgentNotes: fmt.Sprintf(
			"Conversation engaged with persona '%s'. Total turns: %d. Intelligence types found: %d.",
			summary.PersonaUsed,
			summary.TurnCount,
			summary.ExtractedIntelligence.CategoriesFound(),
		),
	}
}

// Client posts final results to a configured endpoint with bounded
// retries. A client with an empty URL is disabled and delivers nothing.
type Client struct {
	url        string
	httpClient *http.Client
	attempts   int
	baseDelay  time.Duration
}

// NewClient builds a callback client. url may be empty to disable
// delivery.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		attempts:   3,
		baseDelay:  2 * time.Second,
	}
}

// Enabled reports whether a delivery URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Deliver posts the final result, retrying with exponential backoff on
// transport errors and non-2xx responses.
func (c *Client) Deliver(ctx context.Context, result FinalResult) error {
	if !c.Enabled() {
		return fmt.Errorf("callback URL is not configured")
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal final result: %w", err)
	}

	err = retry.Do(ctx, c.attempts, c.baseDelay, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		log.Printf("[callback] delivery failed session=%s: %v", result.SessionID, err)
		return err
	}

	log.Printf("[callback] delivered final result session=%s", result.SessionID)
	return nil
}
