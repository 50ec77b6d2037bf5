package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"workmarket_sdr/platform/config"
	"workmarket_sdr/platform/logger"
)

const maxErrorBody = 512

// Client posts lead cards to the CRM webhook. Without a webhook URL it only
// logs the card.
type Client struct {
	url   string
	token string
	http  *http.Client
	log   *logger.Logger
}

func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	return &Client{
		url:   strings.TrimSpace(cfg.GetCRMWebhookURL()),
		token: cfg.GetCRMAPIToken(),
		http:  &http.Client{Timeout: 10 * time.Second},
		log:   log,
	}
}

// Push delivers one card. Any status >= 400 is an error so that queued
// deliveries are retried.
func (c *Client) Push(ctx context.Context, card LeadCard) error {
	if c == nil {
		return nil
	}
	if c.url == "" {
		c.log.Info("crm simulated sync",
			"sessionId", card.SessionID,
			"event", card.Event,
			"stage", card.Stage,
			"name", card.Name,
			"company", card.Company,
			"need", card.Need,
			"meetingLink", card.MeetingLink,
		)
		return nil
	}

	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal crm card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", card.SyncID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("crm webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("crm lead synced", "sessionId", card.SessionID, "event", card.Event, "syncId", card.SyncID)
	return nil
}
