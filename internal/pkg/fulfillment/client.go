package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkmint/linkmint/internal/pkg/config"
)

const defaultAPIBaseURL = "https://api.printful.com"

var (
	// ErrUnavailable covers transport failures and provider 5xx responses.
	// Callers may retry (for webhooks, by letting the processor redeliver).
	ErrUnavailable = errors.New("fulfillment provider unavailable")
	// ErrRejected covers provider 4xx validation responses. Retrying the
	// same submission cannot succeed.
	ErrRejected = errors.New("fulfillment order rejected")
)

// Client talks to the print-on-demand provider's HTTP API.
type Client struct {
	APIKey     string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClient creates a fulfillment client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		APIKey:     strings.TrimSpace(cfg.PrintfulAPIKey),
		APIBaseURL: defaultAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetStoreProduct fetches provider catalog data for one store product.
func (c *Client) GetStoreProduct(ctx context.Context, productID string) (*StoreProduct, error) {
	if c.APIKey == "" {
		return nil, errors.New("fulfillment api key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.APIBaseURL, "/")+"/store/products/"+productID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var raw struct {
		Result struct {
			SyncProduct struct {
				ID           int64  `json:"id"`
				Name         string `json:"name"`
				ThumbnailURL string `json:"thumbnail_url"`
			} `json:"sync_product"`
			SyncVariants []struct {
				ID          int64  `json:"id"`
				RetailPrice string `json:"retail_price"`
				Currency    string `json:"currency"`
			} `json:"sync_variants"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw.Result.SyncProduct.ID == 0 {
		return nil, fmt.Errorf("%w: product %s not found in provider response", ErrRejected, productID)
	}

	product := &StoreProduct{
		ID:           strconv.FormatInt(raw.Result.SyncProduct.ID, 10),
		Name:         raw.Result.SyncProduct.Name,
		ThumbnailURL: raw.Result.SyncProduct.ThumbnailURL,
	}
	if len(raw.Result.SyncVariants) > 0 {
		product.VariantID = raw.Result.SyncVariants[0].ID
		product.RetailPrice = raw.Result.SyncVariants[0].RetailPrice
		product.Currency = raw.Result.SyncVariants[0].Currency
	}
	return product, nil
}

// ListStoreProducts fetches the provider store catalog (id + name pairs).
func (c *Client) ListStoreProducts(ctx context.Context) ([]StoreProduct, error) {
	if c.APIKey == "" {
		return nil, errors.New("fulfillment api key is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.APIBaseURL, "/")+"/store/products", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var raw struct {
		Result []struct {
			ID           int64  `json:"id"`
			Name         string `json:"name"`
			ThumbnailURL string `json:"thumbnail_url"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	products := make([]StoreProduct, 0, len(raw.Result))
	for _, p := range raw.Result {
		products = append(products, StoreProduct{
			ID:           strconv.FormatInt(p.ID, 10),
			Name:         p.Name,
			ThumbnailURL: p.ThumbnailURL,
		})
	}
	return products, nil
}

// SubmitOrder submits one order to the provider and returns its order id.
func (c *Client) SubmitOrder(ctx context.Context, in OrderInput) (*OrderResult, error) {
	if c.APIKey == "" {
		return nil, errors.New("fulfillment api key is not configured")
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	recipient := map[string]interface{}{
		"name":  in.RecipientName,
		"email": in.RecipientEmail,
	}
	if in.ShippingJSON != "" {
		var shipping map[string]interface{}
		if err := json.Unmarshal([]byte(in.ShippingJSON), &shipping); err == nil {
			for k, v := range shipping {
				recipient[k] = v
			}
		}
	}

	payload := map[string]interface{}{
		"external_id": in.ExternalID,
		"recipient":   recipient,
		"items": []map[string]interface{}{
			{
				"sync_variant_id": in.VariantID,
				"quantity":        quantity,
			},
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.APIBaseURL, "/")+"/orders", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var raw struct {
		Result struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &OrderResult{
		ProviderOrderID: strconv.FormatInt(raw.Result.ID, 10),
		Status:          raw.Result.Status,
	}, nil
}

func statusError(statusCode int, body []byte) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode >= 400 && statusCode < 500:
		return fmt.Errorf("%w: status=%d body=%s", ErrRejected, statusCode, string(body))
	default:
		return fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, statusCode, string(body))
	}
}
