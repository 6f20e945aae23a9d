package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/config"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/correlation"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/llm"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/mealslot"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/patient"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/prompt"
	"github.com/sirupsen/logrus"
)

var (
	// ErrPatientSourceUnavailable wraps failures to fetch patient data
	ErrPatientSourceUnavailable = errors.New("patient data source unavailable")

	// ErrGenerationFailed wraps LLM backend failures
	ErrGenerationFailed = errors.New("response generation failed")
)

// DietChartFinder is satisfied by *patient.Service
type DietChartFinder interface {
	FindDietChart(ctx context.Context, ticketID string) (*models.DietChart, error)
}

type AgentService struct {
	charts    DietChartFinder
	engine    *correlation.Engine
	prompts   *prompt.Builder
	generator llm.Generator
	queryLogs models.QueryLogRepository
	logger    *logrus.Logger
}

func NewAgentService(
	charts DietChartFinder,
	engine *correlation.Engine,
	prompts *prompt.Builder,
	generator llm.Generator,
	queryLogs models.QueryLogRepository,
	logger *logrus.Logger,
) *AgentService {
	return &AgentService{
		charts:    charts,
		engine:    engine,
		prompts:   prompts,
		generator: generator,
		queryLogs: queryLogs,
		logger:    logger,
	}
}

// NewEngine builds the correlation engine from the correlation config section
func NewEngine(cfg *config.Config, logger *logrus.Logger) (*correlation.Engine, error) {
	table := mealslot.DefaultTable()
	if len(cfg.Correlation.MealSlots) > 0 {
		var err error
		table, err = mealslot.ParseTable(cfg.Correlation.MealSlots)
		if err != nil {
			return nil, fmt.Errorf("invalid correlation.meal_slots: %w", err)
		}
	}

	options := correlation.Options{
		ResetPerResult:   cfg.Correlation.ResetStaleNotes,
		ClassifyISOTimes: cfg.Correlation.ClassifyISOTimes,
	}

	return correlation.NewEngine(mealslot.NewClassifier(table), options, logger), nil
}

// Correlate looks up the ticket's diet chart and correlates the request's queries with it
func (s *AgentService) Correlate(ctx context.Context, req models.QueryRequest) (*models.CorrelateResponse, error) {
	chart, err := s.findChart(ctx, req.TicketID())
	if err != nil {
		return nil, err
	}

	results, errs := s.engine.Correlate(chart, req.LatestQuery, req.ChatHistory)

	response := &models.CorrelateResponse{
		TicketID:      req.TicketID(),
		DietPlanFound: chart != nil,
		Correlations:  results,
	}
	for _, e := range errs {
		response.SkippedEntries = append(response.SkippedEntries, e.Error())
	}
	return response, nil
}

// Answer correlates the request and asks the LLM for a reply grounded in the results
func (s *AgentService) Answer(ctx context.Context, req models.QueryRequest, userSession string) (*models.QueryResponse, error) {
	startTime := time.Now()
	queryText := req.QueryText()

	s.logger.WithFields(logrus.Fields{
		"ticket_id": req.TicketID(),
		"fragments": len(req.LatestQuery),
		"history":   len(req.ChatHistory),
	}).Info("Answering ticket query")

	correlated, err := s.Correlate(ctx, req)
	if err != nil {
		return nil, err
	}

	messages, err := s.prompts.Build(ctx, queryText, correlated.Correlations)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(ctx, messages)
	if err != nil {
		s.logger.WithError(err).WithField("model", s.generator.Name()).Error("LLM generation failed")
		failed := s.newQueryLog(req, correlated, userSession, startTime)
		failed.Status = "failed"
		s.persist(failed)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	log := s.newQueryLog(req, correlated, userSession, startTime)
	log.GeneratedResponse = generated
	s.persist(log)

	responseTime := time.Since(startTime)

	s.logger.WithFields(logrus.Fields{
		"ticket_id":     req.TicketID(),
		"matches":       len(correlated.Correlations),
		"skipped":       len(correlated.SkippedEntries),
		"model":         s.generator.Name(),
		"response_time": responseTime.Milliseconds(),
	}).Info("Query answered")

	return &models.QueryResponse{
		QueryLogID:        log.ID,
		TicketID:          req.TicketID(),
		GeneratedResponse: generated,
		IdealResponse:     req.IdealResponse,
		Correlations:      correlated.Correlations,
		SkippedEntries:    len(correlated.SkippedEntries),
		Model:             s.generator.Name(),
		ResponseTime:      int(responseTime.Milliseconds()),
	}, nil
}

// findChart maps a missing ticket or plan to a nil chart; only fetch failures are errors
func (s *AgentService) findChart(ctx context.Context, ticketID string) (*models.DietChart, error) {
	chart, err := s.charts.FindDietChart(ctx, ticketID)
	switch {
	case err == nil:
		return chart, nil
	case errors.Is(err, patient.ErrTicketNotFound), errors.Is(err, correlation.ErrNoDietPlanFound):
		return nil, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", ErrPatientSourceUnavailable, err)
	}
}

func (s *AgentService) newQueryLog(req models.QueryRequest, correlated *models.CorrelateResponse, userSession string, startTime time.Time) *models.QueryLog {
	mealTypes := make(models.StringArray, 0, len(correlated.Correlations))
	for _, r := range correlated.Correlations {
		mealTypes = append(mealTypes, r.MealType)
	}

	return &models.QueryLog{
		TicketID:       req.TicketID(),
		QueryText:      req.QueryText(),
		IdealResponse:  req.IdealResponse,
		Model:          s.generator.Name(),
		MealTypes:      mealTypes,
		MatchesCount:   len(correlated.Correlations),
		SkippedCount:   len(correlated.SkippedEntries),
		DietPlanFound:  correlated.DietPlanFound,
		ResponseTimeMs: int(time.Since(startTime).Milliseconds()),
		UserSession:    userSession,
		Status:         "completed",
	}
}

// persist stores the log best-effort; a failure never fails the request
func (s *AgentService) persist(log *models.QueryLog) {
	if s.queryLogs == nil {
		return
	}
	if err := s.queryLogs.Create(log); err != nil {
		s.logger.WithError(err).WithField("ticket_id", log.TicketID).Error("Failed to record query log")
	}
}
