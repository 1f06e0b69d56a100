package fulfillment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		APIKey:     "pf_test_key",
		APIBaseURL: baseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetStoreProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/products/42", r.URL.Path)
		require.Equal(t, "Bearer pf_test_key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"result": {
				"sync_product": {"id": 42, "name": "Cool Shirt", "thumbnail_url": "https://img.example/42.png"},
				"sync_variants": [{"id": 9001, "retail_price": "19.99", "currency": "EUR"}]
			}
		}`))
	}))
	defer srv.Close()

	product, err := testClient(srv.URL).GetStoreProduct(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", product.ID)
	assert.Equal(t, "Cool Shirt", product.Name)
	assert.Equal(t, "https://img.example/42.png", product.ThumbnailURL)
	assert.Equal(t, int64(9001), product.VariantID)
	assert.Equal(t, "19.99", product.RetailPrice)
	assert.Equal(t, "EUR", product.Currency)
}

func TestGetStoreProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"result":"Product not found"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetStoreProduct(context.Background(), "999")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestListStoreProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/products", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`))
	}))
	defer srv.Close()

	products, err := testClient(srv.URL).ListStoreProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "B", products[1].Name)
}

func TestSubmitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		var payload struct {
			ExternalID string `json:"external_id"`
			Recipient  map[string]interface{}
			Items      []struct {
				SyncVariantID int64 `json:"sync_variant_id"`
				Quantity      int   `json:"quantity"`
			} `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "op_abc", payload.ExternalID)
		require.Len(t, payload.Items, 1)
		assert.Equal(t, int64(9001), payload.Items[0].SyncVariantID)
		assert.Equal(t, 1, payload.Items[0].Quantity)

		_, _ = w.Write([]byte(`{"result":{"id":777,"status":"draft"}}`))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).SubmitOrder(context.Background(), OrderInput{
		ExternalID:     "op_abc",
		ProductID:      "42",
		VariantID:      9001,
		RecipientName:  "Buyer",
		RecipientEmail: "buyer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", result.ProviderOrderID)
	assert.Equal(t, "draft", result.Status)
}

func TestSubmitOrder_MergesShippingIntoRecipient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Recipient map[string]interface{} `json:"recipient"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Buyer", payload.Recipient["name"])
		assert.Equal(t, "Berlin", payload.Recipient["city"])

		_, _ = w.Write([]byte(`{"result":{"id":1,"status":"draft"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SubmitOrder(context.Background(), OrderInput{
		ExternalID:    "op_abc",
		VariantID:     9001,
		RecipientName: "Buyer",
		ShippingJSON:  `{"city":"Berlin"}`,
	})
	require.NoError(t, err)
}

func TestSubmitOrder_ErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"bad request is permanent", http.StatusBadRequest, ErrRejected},
		{"unauthorized is permanent", http.StatusUnauthorized, ErrRejected},
		{"server error is retryable", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway is retryable", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).SubmitOrder(context.Background(), OrderInput{
				ExternalID: "op_abc",
				VariantID:  9001,
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubmitOrder_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := testClient(srv.URL).SubmitOrder(context.Background(), OrderInput{
		ExternalID: "op_abc",
		VariantID:  9001,
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}
