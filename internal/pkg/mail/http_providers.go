package mail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	postmarkEndpoint = "https://api.postmarkapp.com/email"
	brevoEndpoint    = "https://api.brevo.com/v3/smtp/email"
	sendgridEndpoint = "https://api.sendgrid.com/v3/mail/send"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

type postmarkMailer struct {
	apiKey   string
	sender   string
	endpoint string
}

func (m *postmarkMailer) Send(to, subject, html, text string) error {
	endpoint := m.endpoint
	if endpoint == "" {
		endpoint = postmarkEndpoint
	}
	payload := map[string]string{
		"From":          m.sender,
		"To":            to,
		"Subject":       subject,
		"HtmlBody":      html,
		"TextBody":      text,
		"MessageStream": "outbound",
	}
	return postJSON(endpoint, payload, map[string]string{
		"Accept":                  "application/json",
		"X-Postmark-Server-Token": m.apiKey,
	})
}

type brevoMailer struct {
	apiKey   string
	sender   string
	endpoint string
}

func (m *brevoMailer) Send(to, subject, html, text string) error {
	endpoint := m.endpoint
	if endpoint == "" {
		endpoint = brevoEndpoint
	}
	payload := map[string]interface{}{
		"sender":      map[string]string{"email": m.sender},
		"to":          []map[string]string{{"email": to}},
		"subject":     subject,
		"htmlContent": html,
		"textContent": text,
	}
	return postJSON(endpoint, payload, map[string]string{
		"accept":  "application/json",
		"api-key": m.apiKey,
	})
}

type sendgridMailer struct {
	apiKey   string
	sender   string
	endpoint string
}

func (m *sendgridMailer) Send(to, subject, html, text string) error {
	endpoint := m.endpoint
	if endpoint == "" {
		endpoint = sendgridEndpoint
	}
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{
				"to":      []map[string]string{{"email": to}},
				"subject": subject,
			},
		},
		"from": map[string]string{"email": m.sender},
		"content": []map[string]string{
			{"type": "text/html", "value": html},
		},
	}
	return postJSON(endpoint, payload, map[string]string{
		"Authorization": "Bearer " + m.apiKey,
	})
}

func postJSON(endpoint string, payload interface{}, headers map[string]string) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("mail provider request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
