package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// printifyFlatShipping is the flat shipping estimate used for static quotes
var printifyFlatShipping = decimal.NewFromFloat(4.99)

// PrintifyAdapter implements the Provider interface for Printify. Submission
// is single-phase: orders enter the production queue on creation, so Confirm
// is a no-op. Printify exposes no pricing API; quotes come from the quoter.
type PrintifyAdapter struct {
	config     *PrintifyConfig
	quoter     Quoter
	httpClient *http.Client
}

// NewPrintifyAdapter creates a new Printify adapter with the given configuration
func NewPrintifyAdapter(config *PrintifyConfig, quoter Quoter) (*PrintifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if quoter == nil {
		quoter = &StaticQuoter{
			CostRatio:      decimal.NewFromFloat(0.5),
			ProductionDays: 5,
			CanProduce:     func(variantID string) bool { return variantID != "" },
		}
	}

	return &PrintifyAdapter{
		config: config,
		quoter: quoter,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

var _ fulfillment.Provider = (*PrintifyAdapter)(nil)

// Code returns the provider code this adapter handles
func (a *PrintifyAdapter) Code() fulfillment.ProviderCode {
	return fulfillment.ProviderCodePrintify
}

// Quote estimates the order from the quoter plus a flat shipping rate
func (a *PrintifyAdapter) Quote(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*fulfillment.Quote, error) {
	quoted, productionDays := a.quoter.QuoteItems(items)

	quote := &fulfillment.Quote{
		Provider:       fulfillment.ProviderCodePrintify,
		ProductionDays: productionDays,
		Items:          quoted,
	}
	if !quote.AllItemsAvailable() {
		return quote, nil
	}

	subtotal := itemsSubtotal(items, quoted)
	quote.ShippingCost = printifyFlatShipping
	quote.TotalCost = subtotal.Add(printifyFlatShipping)
	return quote, nil
}

// Submit creates an order in the shop's production queue
func (a *PrintifyAdapter) Submit(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (string, error) {
	req := printifyOrderRequest{
		ExternalID: order.ID.String(),
		AddressTo:  toPrintifyAddress(order.ShippingAddress),
	}
	for _, item := range items {
		lineItem := printifyLineItem{
			ExternalID: item.ID.String(),
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
		}
		if item.Customization != nil {
			lineItem.PrintAreas = map[string]string{}
			if item.Customization.FrontArtworkURL != "" {
				lineItem.PrintAreas["front"] = item.Customization.FrontArtworkURL
			}
			if item.Customization.BackArtworkURL != "" {
				lineItem.PrintAreas["back"] = item.Customization.BackArtworkURL
			}
		}
		req.LineItems = append(req.LineItems, lineItem)
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/orders.json", req)
	if err != nil {
		return "", err
	}

	var created printifyOrder
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}
	if created.ID == "" {
		return "", fulfillment.ErrProviderInvalidResponse
	}
	return created.ID, nil
}

// Confirm is a no-op: Printify orders go to production on creation
func (a *PrintifyAdapter) Confirm(ctx context.Context, externalOrderID string) error {
	return nil
}

// GetStatus fetches the current state of a Printify order
func (a *PrintifyAdapter) GetStatus(ctx context.Context, externalOrderID string) (*fulfillment.StatusReport, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/orders/"+externalOrderID+".json", nil)
	if err != nil {
		return nil, err
	}

	var order printifyOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", fulfillment.ErrProviderInvalidResponse, err)
	}

	status, err := mapPrintifyStatus(order.Status)
	if err != nil {
		return nil, err
	}

	report := &fulfillment.StatusReport{Status: status}
	if len(order.Shipments) > 0 {
		report.TrackingNumber = order.Shipments[0].Number
		report.TrackingURL = order.Shipments[0].URL
	}
	return report, nil
}

// mapPrintifyStatus translates Printify order statuses to the lifecycle
func mapPrintifyStatus(status string) (fulfillment.Status, error) {
	switch status {
	case "pending", "on-hold":
		return fulfillment.StatusPending, nil
	case "sending-to-production", "in-production":
		return fulfillment.StatusProcessing, nil
	case "fulfilled":
		return fulfillment.StatusShipped, nil
	case "delivered":
		return fulfillment.StatusDelivered, nil
	case "canceled":
		return fulfillment.StatusCancelled, nil
	case "payment-not-received", "had-issues":
		return fulfillment.StatusFailed, nil
	default:
		return "", fmt.Errorf("%w: unknown order status %q", fulfillment.ErrProviderInvalidResponse, status)
	}
}

// doRequest performs an authenticated shop-scoped API call
func (a *PrintifyAdapter) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("printify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := a.config.APIBaseURL + "/shops/" + a.config.ShopID + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("printify: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIToken)
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
		return nil, fmt.Errorf("printify: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fulfillment.ErrProviderAuthFailed
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fulfillment.ErrExternalOrderAbsent
	}
	if resp.StatusCode >= 400 {
		var errResp printifyErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: %s", fulfillment.ErrProviderRequestFailed, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", fulfillment.ErrProviderRequestFailed, resp.StatusCode)
	}
	return body, nil
}

// toPrintifyAddress converts a shipping address to the Printify wire format
func toPrintifyAddress(addr commerce.ShippingAddress) printifyAddress {
	first, last := splitName(addr.Name)
	return printifyAddress{
		FirstName: first,
		LastName:  last,
		Address1:  addr.Address1,
		Address2:  addr.Address2,
		City:      addr.City,
		Region:    addr.Region,
		Zip:       addr.PostalCode,
		Country:   addr.CountryCode,
		Phone:     addr.Phone,
		Email:     addr.Email,
	}
}

// splitName breaks a full name into the first/last pair Printify expects
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
