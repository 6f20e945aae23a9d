package patient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

// StatusError is returned when the patient source answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("patient source request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request can help
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(url string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// URL returns the patient source endpoint
func (c *Client) URL() string {
	return c.url
}

// FetchPatients downloads the full patient list. Nothing is cached between calls.
func (c *Client) FetchPatients(ctx context.Context) ([]models.PatientRecord, error) {
	var records []models.PatientRecord
	if err := c.makeRequest(ctx, http.MethodGet, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ping issues a HEAD request against the patient source
func (c *Client) Ping(ctx context.Context) error {
	return c.makeRequest(ctx, http.MethodHead, nil)
}

func (c *Client) makeRequest(ctx context.Context, method string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    c.url,
	}).Debug("Making patient source request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"response_size": len(responseBody),
	}).Debug("Patient source response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := string(responseBody)
		if len(body) > 500 {
			body = body[:500]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if result != nil && len(responseBody) > 0 {
		if err := sonic.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
