package sms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kisanpay/milkledger/internal/config"
)

// Client exposes the SMS gateway operations used by the application.
type Client interface {
	SendText(ctx context.Context, req SendTextRequest) (*SendTextResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	senderID   string
}

// NewClient builds an SMS gateway client using the provided configuration values.
func NewClient(cfg config.SMSConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		senderID:   cfg.SenderID,
	}
}

// SendTextRequest represents a simplified text message payload.
type SendTextRequest struct {
	To   string
	Body string
}

// SendTextResponse mirrors the gateway's successful response.
type SendTextResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// apiError represents the gateway's error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *APIClient) SendText(ctx context.Context, req SendTextRequest) (*SendTextResponse, error) {
	payload := map[string]any{
		"sender_id": c.senderID,
		"to":        req.To,
		"body":      req.Body,
	}

	result := new(SendTextResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("send sms: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return nil, fmt.Errorf("sms gateway error: code=%d, message=%s", code, message)
	}

	return result, nil
}
