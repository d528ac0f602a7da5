package dolarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=dolarapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://dolarapi.com/v1"

// APIClient is a client for the spot-rate API.
type APIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// APIClientOption is a configuration option for the spot-rate API client.
type APIClientOption func(*APIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) APIClientOption {
	return func(c *APIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) APIClientOption {
	return func(c *APIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) APIClientOption {
	return func(c *APIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewAPIClient creates a new spot-rate API client.
func NewAPIClient(options ...APIClientOption) *APIClient {
	var client = &APIClient{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// SpotQuote is one current quote from the spot-rate API.
type SpotQuote struct {
	Compra             json.Number `json:"compra"`
	Venta              json.Number `json:"venta"`
	FechaActualizacion string      `json:"fechaActualizacion"`
}

// GetQuote retrieves the current quote for one dollar type
// (oficial, blue, bolsa, contadoconliqui).
func (c *APIClient) GetQuote(ctx context.Context, quoteType string) (SpotQuote, error) {
	url := fmt.Sprintf("%s/dolares/%s", c.baseURL, quoteType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return SpotQuote{}, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return SpotQuote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return SpotQuote{}, fmt.Errorf("GET %s -> %d: %s", url, res.StatusCode, string(b))
	}

	var quote SpotQuote
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&quote); err != nil {
		return SpotQuote{}, fmt.Errorf("decoding response: %w", err)
	}
	return quote, nil
}
