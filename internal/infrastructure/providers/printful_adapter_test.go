package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestPrintfulConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *PrintfulConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &PrintfulConfig{APIKey: "pf_key"},
			wantErr: nil,
		},
		{
			name:    "missing api key",
			config:  &PrintfulConfig{},
			wantErr: ErrPrintfulConfigMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, PrintfulAPIURL, tt.config.APIBaseURL)
			assert.Equal(t, 30, tt.config.TimeoutSeconds)
		})
	}
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

func printfulTestOrder() *commerce.Order {
	orderID := uuid.New()
	return &commerce.Order{
		ID:     orderID,
		Status: commerce.OrderStatusPaid,
		ShippingAddress: commerce.ShippingAddress{
			Name:        "Jo Doe",
			Address1:    "600 Congress Ave",
			City:        "Austin",
			Region:      "TX",
			PostalCode:  "78701",
			CountryCode: "US",
		},
		Items: []commerce.OrderItem{
			{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: uuid.New(),
				VariantID: "4012",
				Quantity:  2,
				UnitPrice: decimal.NewFromFloat(24.99),
				Customization: &commerce.Customization{
					FrontArtworkURL: "https://cdn.example.com/art/1.png",
				},
			},
		},
	}
}

func newPrintfulTestAdapter(t *testing.T, handler http.HandlerFunc) (*PrintfulAdapter, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := NewPrintfulConfig("pf_test_key")
	config.APIBaseURL = server.URL

	adapter, err := NewPrintfulAdapter(config, nil)
	require.NoError(t, err)
	return adapter, server
}

func TestPrintfulAdapter_Quote(t *testing.T) {
	t.Run("combines static item costs with live shipping and tax", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer pf_test_key", r.Header.Get("Authorization"))
			switch r.URL.Path {
			case "/shipping/rates":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"code": 200,
					"result": []map[string]interface{}{
						{"id": "STANDARD", "rate": "4.99", "currency": "USD", "minDeliveryDays": 3, "maxDeliveryDays": 5},
					},
				})
			case "/tax/rates":
				json.NewEncoder(w).Encode(map[string]interface{}{
					"code":   200,
					"result": map[string]interface{}{"required": true, "rate": 0.0825, "shipping_taxable": false},
				})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		order := printfulTestOrder()
		quote, err := adapter.Quote(context.Background(), order, order.Items)

		require.NoError(t, err)
		assert.Equal(t, fulfillment.ProviderCodePrintful, quote.Provider)
		assert.True(t, quote.AllItemsAvailable())
		// 24.99 * 0.55 = 13.74 per unit, two units = 27.48
		assert.Equal(t, "27.48", itemsSubtotal(order.Items, quote.Items).StringFixed(2))
		assert.Equal(t, "4.99", quote.ShippingCost.StringFixed(2))
		// 27.48 * 0.0825 = 2.27
		assert.Equal(t, "2.27", quote.Tax.StringFixed(2))
		assert.Equal(t, "34.74", quote.TotalCost.StringFixed(2))
		assert.Equal(t, 3, quote.ProductionDays)
		assert.NotNil(t, quote.EstimatedDelivery)
	})

	t.Run("non-numeric variant is reported unavailable without API calls", func(t *testing.T) {
		called := false
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		order := printfulTestOrder()
		order.Items[0].VariantID = "tshirt-black-m"

		quote, err := adapter.Quote(context.Background(), order, order.Items)

		require.NoError(t, err)
		assert.False(t, quote.AllItemsAvailable())
		assert.False(t, called)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		order := printfulTestOrder()
		quote, err := adapter.Quote(context.Background(), order, order.Items)

		assert.Nil(t, quote)
		assert.ErrorIs(t, err, fulfillment.ErrProviderRequestFailed)
	})
}

func TestPrintfulAdapter_Submit(t *testing.T) {
	t.Run("creates draft order and returns numeric id", func(t *testing.T) {
		var captured printfulOrderRequest
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/orders", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code":   200,
				"result": map[string]interface{}{"id": 8471234, "status": "draft"},
			})
		})

		order := printfulTestOrder()
		externalID, err := adapter.Submit(context.Background(), order, order.Items)

		require.NoError(t, err)
		assert.Equal(t, "8471234", externalID)
		assert.Equal(t, order.ID.String(), captured.ExternalID)
		require.Len(t, captured.Items, 1)
		assert.Equal(t, int64(4012), captured.Items[0].VariantID)
		require.Len(t, captured.Items[0].Files, 1)
		assert.Equal(t, "front", captured.Items[0].Files[0].Type)
	})

	t.Run("rejects unmappable variant before calling the API", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be sent")
		})

		order := printfulTestOrder()
		order.Items[0].VariantID = "nope"

		_, err := adapter.Submit(context.Background(), order, order.Items)

		assert.ErrorIs(t, err, fulfillment.ErrItemNotMappable)
	})

	t.Run("auth failure", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		order := printfulTestOrder()
		_, err := adapter.Submit(context.Background(), order, order.Items)

		assert.ErrorIs(t, err, fulfillment.ErrProviderAuthFailed)
	})
}

func TestPrintfulAdapter_Confirm(t *testing.T) {
	adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/8471234/confirm", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":   200,
			"result": map[string]interface{}{"id": 8471234, "status": "pending"},
		})
	})

	err := adapter.Confirm(context.Background(), "8471234")
	assert.NoError(t, err)
}

func TestPrintfulAdapter_GetStatus(t *testing.T) {
	t.Run("maps fulfilled with tracking", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/8471234", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code": 200,
				"result": map[string]interface{}{
					"id": 8471234, "status": "fulfilled",
					"shipments": []map[string]interface{}{
						{"tracking_number": "1Z999AA10123456784", "tracking_url": "https://track.example.com/1Z999AA10123456784"},
					},
				},
			})
		})

		report, err := adapter.GetStatus(context.Background(), "8471234")

		require.NoError(t, err)
		assert.Equal(t, fulfillment.StatusShipped, report.Status)
		assert.Equal(t, "1Z999AA10123456784", report.TrackingNumber)
	})

	t.Run("unknown status is an invalid response", func(t *testing.T) {
		adapter, _ := newPrintfulTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"code":   200,
				"result": map[string]interface{}{"id": 8471234, "status": "teleported"},
			})
		})

		report, err := adapter.GetStatus(context.Background(), "8471234")

		assert.Nil(t, report)
		assert.ErrorIs(t, err, fulfillment.ErrProviderInvalidResponse)
	})
}

func TestMapPrintfulStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     fulfillment.Status
	}{
		{"draft", fulfillment.StatusPending},
		{"pending", fulfillment.StatusPending},
		{"inprocess", fulfillment.StatusProcessing},
		{"onhold", fulfillment.StatusProcessing},
		{"partial", fulfillment.StatusProcessing},
		{"fulfilled", fulfillment.StatusShipped},
		{"canceled", fulfillment.StatusCancelled},
		{"failed", fulfillment.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			got, err := mapPrintfulStatus(tt.provider)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
