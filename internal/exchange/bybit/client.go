package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// Client wraps the Bybit API client with additional functionality
type Client struct {
	httpClient        *bybit_api.Client
	apiKey            string
	apiSecret         string
	testnet           bool
	demo              bool
	instrumentManager *InstrumentManager
}

// Config holds the configuration for the Bybit client
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // Demo trading environment
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	var baseURL string
	if config.Demo {
		// Demo trading environment (paper trading)
		baseURL = "https://api-demo.bybit.com"
	} else if config.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	// Create the HTTP client against the selected environment's base URL
	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	client := &Client{
		httpClient: httpClient,
		apiKey:     config.APIKey,
		apiSecret:  config.APISecret,
		testnet:    config.Testnet,
		demo:       config.Demo,
	}

	// Initialize instrument manager, used by PlaceOrder to round quantity
	// to the symbol's lot-size step before submitting.
	client.instrumentManager = NewInstrumentManager(client)

	return client
}
