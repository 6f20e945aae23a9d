package patient

import (
	"context"
	"errors"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/correlation"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrTicketNotFound marks a ticket ID absent from the patient source
var ErrTicketNotFound = errors.New("ticket ID not found in patient data")

// Fetcher is the part of Client the service depends on
type Fetcher interface {
	FetchPatientsWithRetry(ctx context.Context) ([]models.PatientRecord, error)
}

type Service struct {
	fetcher Fetcher
	logger  *logrus.Logger
}

func NewService(fetcher Fetcher, logger *logrus.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FindDietChart fetches patient data and returns the diet chart of the first record
// carrying ticketID.
func (s *Service) FindDietChart(ctx context.Context, ticketID string) (*models.DietChart, error) {
	records, err := s.fetcher.FetchPatientsWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	chart, err := FindDietChart(records, ticketID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"ticket_id": ticketID,
			"patients":  len(records),
		}).WithError(err).Info("No diet chart for ticket")
		return nil, err
	}
	return chart, nil
}

// FindDietChart scans records for the first one whose ticket ID matches
func FindDietChart(records []models.PatientRecord, ticketID string) (*models.DietChart, error) {
	for i := range records {
		if records[i].ChatContext.TicketID != ticketID {
			continue
		}
		chart := records[i].ProfileContext.DietChart
		if chart == nil || chart.IsEmpty() {
			return nil, correlation.ErrNoDietPlanFound
		}
		return chart, nil
	}
	return nil, ErrTicketNotFound
}
