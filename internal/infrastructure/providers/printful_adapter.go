package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// maxResponseSize is the maximum allowed provider response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// PrintfulAdapter implements the Provider interface for Printful.
// Submission is two-phase: orders are created as drafts and moved to
// production by an explicit confirm call.
type PrintfulAdapter struct {
	config     *PrintfulConfig
	quoter     Quoter
	httpClient *http.Client
}

// NewPrintfulAdapter creates a new Printful adapter with the given configuration
func NewPrintfulAdapter(config *PrintfulConfig, quoter Quoter) (*PrintfulAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if quoter == nil {
		quoter = &StaticQuoter{
			CostRatio:      decimal.NewFromFloat(0.55),
			ProductionDays: 3,
			CanProduce:     isNumericVariant,
		}
	}

	return &PrintfulAdapter{
		config: config,
		quoter: quoter,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ fulfillment.Provider = (*PrintfulAdapter)(nil)

// isNumericVariant reports whether a variant maps to the Printful catalog.
// Printful variant IDs are numeric.
func isNumericVariant(variantID string) bool {
	if variantID == "" {
		return false
	}
	_, err := strconv.ParseInt(variantID, 10, 64)
	return err == nil
}

// Code returns the provider code this adapter handles
func (a *PrintfulAdapter) Code() fulfillment.ProviderCode {
	return fulfillment.ProviderCodePrintful
}

// ---------------------------------------------------------------------------
// Quote
// ---------------------------------------------------------------------------

// Quote estimates production cost through the quoter and fetches live
// shipping and tax rates for the destination
func (a *PrintfulAdapter) Quote(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*fulfillment.Quote, error) {
	quoted, productionDays := a.quoter.QuoteItems(items)

	quote := &fulfillment.Quote{
		Provider:       fulfillment.ProviderCodePrintful,
		ProductionDays: productionDays,
		Items:          quoted,
	}
	if !quote.AllItemsAvailable() {
		// No point pricing shipping for an order we cannot produce whole.
		return quote, nil
	}

	subtotal := itemsSubtotal(items, quoted)

	rate, err := a.fetchShippingRate(ctx, order, items)
	if err != nil {
		return nil, err
	}
	shipping, err := decimal.NewFromString(rate.Rate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad shipping rate %q", fulfillment.ErrProviderInvalidResponse, rate.Rate)
	}

	tax, err := a.fetchTax(ctx, order, subtotal, shipping)
	if err != nil {
		return nil, err
	}

	quote.ShippingCost = shipping
	quote.Tax = tax
	quote.TotalCost = subtotal.Add(shipping).Add(tax)
	if rate.MaxDeliveryDays > 0 {
		eta := time.Now().AddDate(0, 0, productionDays+rate.MaxDeliveryDays)
		quote.EstimatedDelivery = &eta
	}
	return quote, nil
}

func (a *PrintfulAdapter) fetchShippingRate(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*printfulShippingRate, error) {
	req := printfulShippingRateRequest{Recipient: toPrintfulRecipient(order.ShippingAddress)}
	for _, item := range items {
		variantID, _ := strconv.ParseInt(item.VariantID, 10, 64)
		req.Items = append(req.Items, struct {
			VariantID int64 `json:"variant_id"`
			Quantity  int   `json:"quantity"`
		}{VariantID: variantID, Quantity: item.Quantity})
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/shipping/rates", req)
	if err != nil {
		return nil, err
	}

	var rates []printfulShippingRate
	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}
	if len(rates) == 0 {
		return nil, fulfillment.ErrQuoteUnavailable
	}
	// The first rate is the cheapest offered for the destination.
	return &rates[0], nil
}

func (a *PrintfulAdapter) fetchTax(ctx context.Context, order *commerce.Order, subtotal, shipping decimal.Decimal) (decimal.Decimal, error) {
	body, err := a.doRequest(ctx, http.MethodPost, "/tax/rates", printfulTaxRequest{
		Recipient: toPrintfulRecipient(order.ShippingAddress),
	})
	if err != nil {
		return decimal.Zero, err
	}

	var rate printfulTaxRate
	if err := json.Unmarshal(body, &rate); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}
	if !rate.Required {
		return decimal.Zero, nil
	}

	taxable := subtotal
	if rate.ShippingTaxable {
		taxable = taxable.Add(shipping)
	}
	return taxable.Mul(decimal.NewFromFloat(rate.Rate)).Round(2), nil
}

// ---------------------------------------------------------------------------
// Submit / Confirm
// ---------------------------------------------------------------------------

// Submit creates a draft order and returns its numeric ID as a string
func (a *PrintfulAdapter) Submit(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (string, error) {
	req := printfulOrderRequest{
		ExternalID: order.ID.String(),
		Recipient:  toPrintfulRecipient(order.ShippingAddress),
	}
	for _, item := range items {
		variantID, err := strconv.ParseInt(item.VariantID, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %s", fulfillment.ErrItemNotMappable, item.VariantID)
		}
		orderItem := printfulOrderItem{
			ExternalID:  item.ID.String(),
			VariantID:   variantID,
			Quantity:    item.Quantity,
			RetailPrice: item.UnitPrice.StringFixed(2),
		}
		if item.Customization != nil {
			if item.Customization.FrontArtworkURL != "" {
				orderItem.Files = append(orderItem.Files, printfulFile{Type: "front", URL: item.Customization.FrontArtworkURL})
			}
			if item.Customization.BackArtworkURL != "" {
				orderItem.Files = append(orderItem.Files, printfulFile{Type: "back", URL: item.Customization.BackArtworkURL})
			}
		}
		req.Items = append(req.Items, orderItem)
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return "", err
	}

	var created printfulOrder
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}
	if created.ID == 0 {
		return "", fulfillment.ErrProviderInvalidResponse
	}
	return strconv.FormatInt(created.ID, 10), nil
}

// Confirm moves a draft order into production
func (a *PrintfulAdapter) Confirm(ctx context.Context, externalOrderID string) error {
	_, err := a.doRequest(ctx, http.MethodPost, "/orders/"+externalOrderID+"/confirm", nil)
	return err
}

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// GetStatus fetches the current state of a Printful order
func (a *PrintfulAdapter) GetStatus(ctx context.Context, externalOrderID string) (*fulfillment.StatusReport, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/orders/"+externalOrderID, nil)
	if err != nil {
		return nil, err
	}

	var order printfulOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}

	status, err := mapPrintfulStatus(order.Status)
	if err != nil {
		return nil, err
	}

	report := &fulfillment.StatusReport{Status: status}
	if len(order.Shipments) > 0 {
		report.TrackingNumber = order.Shipments[0].TrackingNumber
		report.TrackingURL = order.Shipments[0].TrackingURL
	}
	return report, nil
}

// mapPrintfulStatus translates Printful order statuses to the lifecycle
func mapPrintfulStatus(status string) (fulfillment.Status, error) {
	switch status {
	case "draft", "pending":
		return fulfillment.StatusPending, nil
	case "inprocess", "onhold", "partial":
		return fulfillment.StatusProcessing, nil
	case "fulfilled":
		return fulfillment.StatusShipped, nil
	case "canceled":
		return fulfillment.StatusCancelled, nil
	case "failed":
		return fulfillment.StatusFailed, nil
	default:
		return "", fmt.Errorf("%w: unknown order status %q", fulfillment.ErrProviderInvalidResponse, status)
	}
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

// doRequest performs an authenticated API call and unwraps the response
// envelope, returning the raw result payload
func (a *PrintfulAdapter) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("printful: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("printful: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("printful: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fulfillment.ErrProviderAuthFailed
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", fulfillment.ErrProviderRequestFailed, resp.StatusCode)
	}

	var envelope printfulEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}
	if envelope.Code >= 400 {
		if envelope.Error != nil {
			return nil, fmt.Errorf("%w: %s", fulfillment.ErrProviderRequestFailed, envelope.Error.Message)
		}
		return nil, fmt.Errorf("%w: code %d", fulfillment.ErrProviderRequestFailed, envelope.Code)
	}
	return envelope.Result, nil
}

// toPrintfulRecipient converts a shipping address to the Printful wire format
func toPrintfulRecipient(addr commerce.ShippingAddress) printfulRecipient {
	return printfulRecipient{
		Name:        addr.Name,
		Address1:    addr.Address1,
		Address2:    addr.Address2,
		City:        addr.City,
		StateCode:   addr.Region,
		CountryCode: addr.CountryCode,
		Zip:         addr.PostalCode,
		Phone:       addr.Phone,
		Email:       addr.Email,
	}
}
