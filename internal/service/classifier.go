package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"
)

// Location is the district / thana pair resolved from a free-text address.
type Location struct {
	District string `json:"district"`
	Thana    string `json:"thana"`
}

// UnknownLocation is attached when classification fails, so an operator
// knows to resolve the address by hand.
func UnknownLocation() Location {
	return Location{District: model.DistrictUnknown, Thana: model.ThanaManualCheck}
}

// AddressClassifier resolves a free-text shipping address. Implementations
// are best-effort: callers treat any error as the unknown sentinel and never
// fail the surrounding operation on it.
type AddressClassifier interface {
	Classify(ctx context.Context, address string) (Location, error)
}

// httpAddressClassifier calls the hosted classification endpoint.
type httpAddressClassifier struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPAddressClassifier creates a classifier backed by the configured
// HTTP endpoint. The short timeout keeps a slow model call from delaying
// order placement.
func NewHTTPAddressClassifier(url, apiKey string, logger *slog.Logger) AddressClassifier {
	return &httpAddressClassifier{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 8 * time.Second},
		logger: logger,
	}
}

// Classify posts the address and decodes the district/thana pair.
func (c *httpAddressClassifier) Classify(ctx context.Context, address string) (Location, error) {
	if c.url == "" {
		return UnknownLocation(), fmt.Errorf("classifier endpoint not configured")
	}

	body, err := json.Marshal(map[string]string{"address": address})
	if err != nil {
		return UnknownLocation(), fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return UnknownLocation(), fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return UnknownLocation(), fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownLocation(), fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return UnknownLocation(), fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if loc.District == "" {
		loc = UnknownLocation()
	} else if loc.Thana == "" {
		loc.Thana = model.ThanaManualCheck
	}
	return loc, nil
}
