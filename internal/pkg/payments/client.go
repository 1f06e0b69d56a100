package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/linkmint/linkmint/internal/pkg/config"
)

const defaultAPIBaseURL = "https://api.stripe.com"

// EventTypeCheckoutCompleted is the only dispatch-eligible event type; all
// other types are acknowledged and ignored.
const (
	EventTypeCheckoutCompleted = "checkout.session.completed"
	EventTypeChargeRefunded    = "charge.refunded"
)

// Client talks to the payment processor's HTTP API.
type Client struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClient creates a payment client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		SecretKey:  strings.TrimSpace(cfg.StripeSecretKey),
		APIBaseURL: defaultAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateCheckoutSession creates a one-item payment session and returns the
// redirect URL the customer should be sent to.
func (c *Client) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	if c.SecretKey == "" {
		return nil, errors.New("payment secret key is not configured")
	}
	if in.PriceCents <= 0 {
		return nil, errors.New("price must be positive")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(in.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(in.PriceCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", in.ProductTitle)
	form.Set("success_url", in.SuccessURL)
	form.Set("cancel_url", in.CancelURL)
	form.Set("metadata[product_slug]", in.ProductSlug)
	form.Set("metadata[order_public_id]", in.OrderPublicID)
	if in.CustomerEmail != "" {
		form.Set("customer_email", in.CustomerEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.APIBaseURL, "/")+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout session request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.URL) == "" {
		return nil, errors.New("checkout session response missing redirect url")
	}
	return &session, nil
}

// ListCharges fetches charges created at or after the given time, following
// pagination until exhausted. Used by the CLI revenue stats.
func (c *Client) ListCharges(ctx context.Context, since time.Time) ([]Charge, error) {
	if c.SecretKey == "" {
		return nil, errors.New("payment secret key is not configured")
	}

	var all []Charge
	startingAfter := ""
	for {
		u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/v1/charges")
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("limit", "100")
		q.Set("created[gte]", strconv.FormatInt(since.Unix(), 10))
		if startingAfter != "" {
			q.Set("starting_after", startingAfter)
		}
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.SecretKey)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("charge list request failed: status=%d body=%s", resp.StatusCode, string(body))
		}

		var page struct {
			Data    []Charge `json:"data"`
			HasMore bool     `json:"has_more"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			break
		}
		startingAfter = page.Data[len(page.Data)-1].ID
	}
	return all, nil
}

// ParseEvent extracts the fields the dispatcher needs from a raw webhook
// payload. The payload must already be signature-verified.
func ParseEvent(payload []byte) (*Event, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				Metadata map[string]string `json:"metadata"`
				CustomerDetails struct {
					Email string `json:"email"`
					Name  string `json:"name"`
				} `json:"customer_details"`
				BillingDetails struct {
					Email string `json:"email"`
				} `json:"billing_details"`
				Shipping json.RawMessage `json:"shipping_details"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if strings.TrimSpace(raw.ID) == "" || strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("webhook payload missing event id or type")
	}

	ev := &Event{
		ID:            raw.ID,
		Type:          raw.Type,
		ProductSlug:   raw.Data.Object.Metadata["product_slug"],
		OrderPublicID: raw.Data.Object.Metadata["order_public_id"],
		CustomerEmail: raw.Data.Object.CustomerDetails.Email,
		CustomerName:  raw.Data.Object.CustomerDetails.Name,
		RawPayload:    append([]byte(nil), payload...),
	}
	if ev.CustomerEmail == "" {
		ev.CustomerEmail = raw.Data.Object.BillingDetails.Email
	}
	if len(raw.Data.Object.Shipping) > 0 && string(raw.Data.Object.Shipping) != "null" {
		ev.ShippingJSON = string(raw.Data.Object.Shipping)
	}
	return ev, nil
}
