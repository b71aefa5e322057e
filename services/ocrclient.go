package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"innova/models"
)

var ErrRecognitionFailed = errors.New("could not recognize the plate")

// OCRClient talks to the recognition service and the external reporting
// sink over HTTP.
type OCRClient struct {
	baseURL string
	sinkURL string
	sinkKey string
	client  *http.Client
}

func NewOCRClient(baseURL, sinkURL, sinkKey string, timeout time.Duration) *OCRClient {
	return &OCRClient{
		baseURL: baseURL,
		sinkURL: sinkURL,
		sinkKey: sinkKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type recognizeRequest struct {
	ImageName string `json:"image_name"`
}

type errorDetail struct {
	Detail string `json:"detail"`
}

// RecognizeDetailed asks for the full recognition of one catalog image.
func (c *OCRClient) RecognizeDetailed(ctx context.Context, imageName string) (*models.RecognitionResult, error) {
	body, err := json.Marshal(recognizeRequest{ImageName: imageName})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr/recognize/detailed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail errorDetail
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
			return nil, errors.New(detail.Detail)
		}
		return nil, ErrRecognitionFailed
	}

	var result models.RecognitionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	return &result, nil
}

// Plates lists the catalog. limit <= 0 means no limit.
func (c *OCRClient) Plates(ctx context.Context, limit int) ([]models.PlateSummary, error) {
	url := c.baseURL + "/ocr/plates"
	if limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Plates []models.PlateSummary `json:"plates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Plates, nil
}

// Exists checks whether the catalog knows an image.
func (c *OCRClient) Exists(ctx context.Context, imageName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ocr/exists/"+imageName, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var payload struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	return payload.Exists, nil
}

// ImageURL returns where the image itself is served from.
func (c *OCRClient) ImageURL(imageName string) string {
	return c.baseURL + "/ocr/image/" + imageName
}

// Report forwards one plate reading to the external sink. Callers treat
// failures as best-effort; nothing here retries.
func (c *OCRClient) Report(ctx context.Context, reading models.PlateReading) error {
	body, err := json.Marshal(reading)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sinkURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.sinkKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink rejected reading: status %d", resp.StatusCode)
	}
	return nil
}
