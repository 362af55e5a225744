// Package advisory talks to the separately hosted air-quality classifier.
// The prediction is display-only: it is logged and forwarded to dashboards
// but never feeds back into the control decision.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/rs/zerolog"
)

// Client calls the classifier's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Prediction is the classifier's verdict for one reading
type Prediction struct {
	Class      int     `json:"prediction"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// predictRequest mirrors the feature order the classifier was trained on
type predictRequest struct {
	Temperature float64 `json:"temperature"`
	CO2         float64 `json:"co2"`
	PM25        float64 `json:"pm25"`
	Humidity    float64 `json:"humidity"`
}

// NewClient creates an advisory client
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Predict asks the classifier to label the given reading
func (c *Client) Predict(ctx context.Context, reading *models.Reading) (*Prediction, error) {
	body, err := json.Marshal(predictRequest{
		Temperature: reading.Temperature,
		CO2:         reading.Gas,
		PM25:        reading.Particulate,
		Humidity:    reading.Humidity,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Include a short error body excerpt when the service reports one
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("predict returned status %d: %s", resp.StatusCode, data)
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}

	c.logger.Debug().
		Str("label", prediction.Label).
		Float64("confidence", prediction.Confidence).
		Msg("Advisory prediction received")

	return &prediction, nil
}

// Healthy checks the classifier's health endpoint
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
