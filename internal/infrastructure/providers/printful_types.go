package providers

import "encoding/json"

// printfulEnvelope is the common response wrapper of the Printful API
type printfulEnvelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *printfulError  `json:"error,omitempty"`
}

type printfulError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type printfulRecipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code,omitempty"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

type printfulFile struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type printfulOrderItem struct {
	ExternalID  string         `json:"external_id,omitempty"`
	VariantID   int64          `json:"variant_id"`
	Quantity    int            `json:"quantity"`
	RetailPrice string         `json:"retail_price,omitempty"`
	Files       []printfulFile `json:"files,omitempty"`
}

type printfulOrderRequest struct {
	ExternalID string              `json:"external_id"`
	Recipient  printfulRecipient   `json:"recipient"`
	Items      []printfulOrderItem `json:"items"`
}

type printfulOrder struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Created    string `json:"created"`
	Shipments  []struct {
		TrackingNumber string `json:"tracking_number"`
		TrackingURL    string `json:"tracking_url"`
		ShipDate       string `json:"ship_date"`
	} `json:"shipments,omitempty"`
}

type printfulShippingRateRequest struct {
	Recipient printfulRecipient `json:"recipient"`
	Items     []struct {
		VariantID int64 `json:"variant_id"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
}

type printfulShippingRate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Rate            string `json:"rate"`
	Currency        string `json:"currency"`
	MinDeliveryDays int    `json:"minDeliveryDays"`
	MaxDeliveryDays int    `json:"maxDeliveryDays"`
}

type printfulTaxRequest struct {
	Recipient printfulRecipient `json:"recipient"`
}

type printfulTaxRate struct {
	Required        bool    `json:"required"`
	Rate            float64 `json:"rate"`
	ShippingTaxable bool    `json:"shipping_taxable"`
}
