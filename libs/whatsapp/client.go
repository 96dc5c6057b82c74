// Package whatsapp sends template messages through the Meta WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultBaseURL = "https://graph.facebook.com/v19.0"

var ErrNotConfigured = errors.New("whatsapp client not configured")

type Config struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// Template is a pre-approved message template with positional body parameters.
type Template struct {
	Name       string
	Language   string
	BodyParams []string
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	phoneID string
	token   string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		phoneID: strings.TrimSpace(cfg.PhoneNumberID),
		token:   strings.TrimSpace(cfg.AccessToken),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured reports whether both the phone number id and the access token are set.
func (c *Client) Configured() bool {
	return c.phoneID != "" && c.token != ""
}

type textParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []textParam `json:"parameters"`
}

type language struct {
	Code string `json:"code"`
}

type templatePayload struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components,omitempty"`
}

type messageRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

func (c *Client) SendTemplate(ctx context.Context, to string, tmpl Template) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	msg := messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         templatePayload{Name: tmpl.Name, Language: language{Code: tmpl.Language}},
	}
	if len(tmpl.BodyParams) > 0 {
		params := make([]textParam, 0, len(tmpl.BodyParams))
		for _, p := range tmpl.BodyParams {
			params = append(params, textParam{Type: "text", Text: p})
		}
		msg.Template.Components = []component{{Type: "body", Parameters: params}}
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := c.baseURL + "/" + c.phoneID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp template: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
