package patient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
	}
}

// backoff returns the wait before retry number attempt (zero based)
func (r RetryConfig) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(r.BaseDelay) * math.Pow(1.5, float64(attempt)))
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	return delay
}

func (c *Client) FetchPatientsWithRetry(ctx context.Context) ([]models.PatientRecord, error) {
	return c.FetchPatientsWithConfig(ctx, DefaultRetryConfig())
}

func (c *Client) FetchPatientsWithConfig(ctx context.Context, config RetryConfig) ([]models.PatientRecord, error) {
	var records []models.PatientRecord
	err := c.retryOperation(ctx, config, func() error {
		var err error
		records, err = c.FetchPatients(ctx)
		return err
	})
	return records, err
}

func (c *Client) retryOperation(ctx context.Context, config RetryConfig, operation func() error) error {
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		// 4xx other than 429 will not get better
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return err
		}

		if attempt == config.MaxRetries {
			return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries, err)
		}

		delay := config.backoff(attempt)

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("Retrying patient source request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}
