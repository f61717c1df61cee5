package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

// Client posts bridge lifecycle notifications to an operator-configured URL.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
}

func New(logger *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type terminalOutcomePayload struct {
	RequestID       string `json:"request_id"`
	UserAddress     string `json:"user_address"`
	TerminalOutcome string `json:"terminal_outcome"`
	SourceTxHash    string `json:"source_tx_hash,omitempty"`
	DestTxHash      string `json:"dest_tx_hash,omitempty"`
}

// NotifyTerminalOutcome fires a best-effort POST when a bridge request
// reaches a terminal state. Failures are logged, never propagated; an
// external collaborator polling history remains the source of truth.
func (c *Client) NotifyTerminalOutcome(ctx context.Context, webhookURL, requestID, userAddress, outcome, sourceTxHash, destTxHash string) {
	if webhookURL == "" {
		return
	}

	body, err := json.Marshal(terminalOutcomePayload{
		RequestID:       requestID,
		UserAddress:     userAddress,
		TerminalOutcome: outcome,
		SourceTxHash:    sourceTxHash,
		DestTxHash:      destTxHash,
	})
	if err != nil {
		c.logger.Error("[NotifyTerminalOutcome][Marshal]", map[string]string{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("[NotifyTerminalOutcome][NewRequest]", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("[NotifyTerminalOutcome][Do]", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	c.logger.Info("[NotifyTerminalOutcome] delivered", map[string]string{
		"request_id":  requestID,
		"outcome":     outcome,
		"status_code": resp.Status,
	})
}
