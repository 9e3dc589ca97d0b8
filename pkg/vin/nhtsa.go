package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glassops/glassops-backend/pkg/types"
)

// NHTSADecoder calls the public vPIC DecodeVinValues endpoint.
type NHTSADecoder struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// NewNHTSADecoder builds a decoder; a nil client falls back to http.DefaultClient.
func NewNHTSADecoder(baseURL string, timeout time.Duration, client *http.Client) (*NHTSADecoder, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("vin base url required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NHTSADecoder{baseURL: strings.TrimRight(baseURL, "/"), client: client, timeout: timeout}, nil
}

type decodeResponse struct {
	Results []struct {
		ModelYear string `json:"ModelYear"`
		Make      string `json:"Make"`
		Model     string `json:"Model"`
		ErrorCode string `json:"ErrorCode"`
	} `json:"Results"`
}

func (d *NHTSADecoder) Decode(ctx context.Context, raw string) (types.VehicleInfo, error) {
	vin := Normalize(raw)
	if !Valid(vin) {
		return types.VehicleInfo{}, ErrInvalidFormat
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/DecodeVinValues/%s?format=json", d.baseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.VehicleInfo{}, fmt.Errorf("build vin request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return types.VehicleInfo{}, fmt.Errorf("vin lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.VehicleInfo{}, fmt.Errorf("vin lookup: unexpected status %d", resp.StatusCode)
	}

	var body decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.VehicleInfo{}, fmt.Errorf("decode vin response: %w", err)
	}
	if len(body.Results) == 0 {
		return types.VehicleInfo{}, ErrNotDecoded
	}

	result := body.Results[0]
	info := types.VehicleInfo{
		Year:  strings.TrimSpace(result.ModelYear),
		Make:  strings.TrimSpace(result.Make),
		Model: strings.TrimSpace(result.Model),
	}
	// vPIC answers 200 with empty fields for unknown VINs.
	if info.Make == "" || info.Year == "" {
		return types.VehicleInfo{}, ErrNotDecoded
	}
	return info, nil
}
