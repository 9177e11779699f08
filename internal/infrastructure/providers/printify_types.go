package providers

type printifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Region    string `json:"region,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

type printifyLineItem struct {
	ExternalID string            `json:"external_id,omitempty"`
	VariantID  string            `json:"variant_id"`
	Quantity   int               `json:"quantity"`
	PrintAreas map[string]string `json:"print_areas,omitempty"`
}

type printifyOrderRequest struct {
	ExternalID string             `json:"external_id"`
	LineItems  []printifyLineItem `json:"line_items"`
	AddressTo  printifyAddress    `json:"address_to"`
}

type printifyOrder struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	Shipments []struct {
		Carrier string `json:"carrier"`
		Number  string `json:"number"`
		URL     string `json:"url"`
	} `json:"shipments,omitempty"`
}

type printifyErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		Reason string `json:"reason"`
		Code   int    `json:"code"`
	} `json:"errors"`
}
