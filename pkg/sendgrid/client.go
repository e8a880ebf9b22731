package sendgrid

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

	"github.com/ddsc-labs/community-backend/pkg/config"
)

const (
	defaultBaseURL = "https://api.sendgrid.com/v3"
	sendPath       = "/mail/send"
	defaultTimeout = 10 * time.Second
)

// Message is one outbound email.
type Message struct {
	To        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender is the surface consumers depend on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client talks to the SendGrid v3 mail send endpoint.
type Client struct {
	apiKey  string
	from    string
	baseURL string
	http    *http.Client
}

// New builds a SendGrid client from config. The API key and default sender
// address are both required.
func New(cfg config.SendgridConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, errors.New("sendgrid from email is required")
	}
	return &Client{
		apiKey:  cfg.APIKey,
		from:    cfg.DefaultFrom,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers a single message. A non-2xx status is returned as an error with
// the response body attached for diagnostics.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient email is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("subject is required")
	}

	parts := []content{}
	if msg.PlainBody != "" {
		parts = append(parts, content{Type: "text/plain", Value: msg.PlainBody})
	}
	if msg.HTMLBody != "" {
		parts = append(parts, content{Type: "text/html", Value: msg.HTMLBody})
	}
	if len(parts) == 0 {
		return errors.New("message body is required")
	}

	body := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.from},
		Subject:          msg.Subject,
		Content:          parts,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding sendgrid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("building sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}
