package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// Client implements domain.SearchGateway over the search API's HTTP contract:
// GET /search for product queries and POST /search for barcode lookups.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a search API client. baseURL points at the API root,
// e.g. "https://api.lym.app/api/v1".
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

type searchResponse struct {
	Products []domain.Product `json:"products"`
}

type barcodeRequest struct {
	Barcode string `json:"barcode"`
}

type barcodeResponse struct {
	Product domain.Product `json:"product"`
}

// FetchProducts queries one source for products matching the query
func (c *Client) FetchProducts(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("source", string(source))
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "LYM/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("search request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceFailure, resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return searchResp.Products, nil
}

// LookupBarcode resolves a scanned code. A 404 maps to ErrProductNotFound;
// any other non-2xx status is a generic source failure.
func (c *Client) LookupBarcode(ctx context.Context, code string) (*domain.Product, error) {
	payload, err := json.Marshal(barcodeRequest{Barcode: code})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/search", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "LYM/1.0")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSourceFailure, resp.StatusCode)
	}

	var barcodeResp barcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&barcodeResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &barcodeResp.Product, nil
}
