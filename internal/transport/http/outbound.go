package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OutboundClient posts engine-initiated messages to the chat platform's
// write endpoint. Delivery failure is reported to the caller, never fatal.
type OutboundClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOutboundClient(baseURL string) *OutboundClient {
	return &OutboundClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type writeMessageRequest struct {
	ConversationID string `json:"conversationId"`
	TargetAddress  string `json:"targetAddress"`
	Text           string `json:"text"`
}

func (c *OutboundClient) Send(ctx context.Context, userID, address, text string) error {
	body, err := json.Marshal(writeMessageRequest{
		ConversationID: userID,
		TargetAddress:  address,
		Text:           text,
	})
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/messages/write", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post outbound message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("outbound endpoint returned %s", resp.Status)
	}
	return nil
}
