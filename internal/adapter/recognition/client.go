// Package recognition is the HTTP client for the external food-recognition
// and nutrition-lookup API. The core treats it as an opaque collaborator.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mealtrack/internal/domain"
)

// Client calls the recognition API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ domain.FoodRecognitionService = (*Client)(nil)

// New creates a Client for the given API base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// AnalyzeImage uploads a meal photo and returns the recognised candidates.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, filename string) ([]domain.RecognizedFood, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/food/analyze-meal", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var body struct {
		Success bool                    `json:"success"`
		Foods   []domain.RecognizedFood `json:"foods"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, nil
	}
	return body.Foods, nil
}

// Search looks up foods by name.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.RecognizedFood, error) {
	u := c.baseURL + "/food/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Results []domain.RecognizedFood `json:"results"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recognition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recognition: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("recognition: decoding response: %w", err)
	}
	return nil
}
