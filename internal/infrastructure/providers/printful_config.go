package providers

import "errors"

// PrintfulAPIURL is the production API endpoint
const PrintfulAPIURL = "https://api.printful.com"

// Errors for Printful configuration
var (
	ErrPrintfulConfigMissingAPIKey = errors.New("printful: api key is required")
)

// PrintfulConfig holds configuration for the Printful API
type PrintfulConfig struct {
	// APIKey is the bearer token from the Printful dashboard
	APIKey string
	// APIBaseURL is the base URL for the Printful API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewPrintfulConfig creates a new Printful configuration with defaults
func NewPrintfulConfig(apiKey string) *PrintfulConfig {
	return &PrintfulConfig{
		APIKey:         apiKey,
		APIBaseURL:     PrintfulAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Printful configuration
func (c *PrintfulConfig) Validate() error {
	if c.APIKey == "" {
		return ErrPrintfulConfigMissingAPIKey
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = PrintfulAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
