package providers

import "errors"

// PrintifyAPIURL is the production API endpoint
const PrintifyAPIURL = "https://api.printify.com/v1"

// Errors for Printify configuration
var (
	ErrPrintifyConfigMissingAPIToken = errors.New("printify: api token is required")
	ErrPrintifyConfigMissingShopID   = errors.New("printify: shop id is required")
)

// PrintifyConfig holds configuration for the Printify API. All order
// endpoints are scoped to a shop.
type PrintifyConfig struct {
	// APIToken is the personal access token from the Printify dashboard
	APIToken string
	// ShopID scopes all order operations
	ShopID string
	// APIBaseURL is the base URL for the Printify API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewPrintifyConfig creates a new Printify configuration with defaults
func NewPrintifyConfig(apiToken, shopID string) *PrintifyConfig {
	return &PrintifyConfig{
		APIToken:       apiToken,
		ShopID:         shopID,
		APIBaseURL:     PrintifyAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Printify configuration
func (c *PrintifyConfig) Validate() error {
	if c.APIToken == "" {
		return ErrPrintifyConfigMissingAPIToken
	}
	if c.ShopID == "" {
		return ErrPrintifyConfigMissingShopID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = PrintifyAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
