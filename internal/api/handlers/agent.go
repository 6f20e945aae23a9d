package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/services"
	"github.com/Ayash-Bera/nutri-agent/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxQueryLength = 4000

// QueryService is satisfied by *services.AgentService
type QueryService interface {
	Answer(ctx context.Context, req models.QueryRequest, userSession string) (*models.QueryResponse, error)
	Correlate(ctx context.Context, req models.QueryRequest) (*models.CorrelateResponse, error)
}

type AgentHandler struct {
	service   QueryService
	queryLogs models.QueryLogRepository
	feedback  models.ResponseFeedbackRepository
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewAgentHandler(
	service QueryService,
	queryLogs models.QueryLogRepository,
	feedback models.ResponseFeedbackRepository,
	timeout time.Duration,
	logger *logrus.Logger,
) *AgentHandler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &AgentHandler{
		service:   service,
		queryLogs: queryLogs,
		feedback:  feedback,
		timeout:   timeout,
		logger:    logger,
	}
}

// HandleQuery answers the latest query of a ticket using its diet plan
func (h *AgentHandler) HandleQuery(c *gin.Context) {
	req, ok := h.bindQuery(c)
	if !ok {
		return
	}

	userSession := h.getUserSession(c)

	h.logger.WithFields(logrus.Fields{
		"ticket_id":    req.TicketID(),
		"user_session": userSession,
		"ip_address":   c.ClientIP(),
	}).Info("Processing query request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response, err := h.service.Answer(ctx, req, userSession)
	if err != nil {
		h.logger.WithError(err).WithField("ticket_id", req.TicketID()).Error("Query failed")
		utils.ErrorResponse(c, statusFor(err), "Query failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Query answered", response)
}

// HandleCorrelate returns the diet correlation for the request without calling the LLM
func (h *AgentHandler) HandleCorrelate(c *gin.Context) {
	req, ok := h.bindQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response, err := h.service.Correlate(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithField("ticket_id", req.TicketID()).Error("Correlation failed")
		utils.ErrorResponse(c, statusFor(err), "Correlation failed", err)
		return
	}

	message := "Diet plan correlated"
	if !response.DietPlanFound {
		message = "No diet plan found for this ticket ID"
	}
	utils.SuccessResponse(c, http.StatusOK, message, response)
}

// HandleFeedback records a reviewer's rating of a generated answer
func (h *AgentHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	if !models.IsValidRating(req.Rating) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid rating", nil)
		return
	}

	if _, err := h.queryLogs.GetByID(req.QueryLogID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Query log not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to look up query log")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	feedback := &models.ResponseFeedback{
		QueryLogID:  req.QueryLogID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		UserSession: h.getUserSession(c),
	}

	if err := h.feedback.Create(feedback); err != nil {
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query_log_id": req.QueryLogID,
		"rating":       req.Rating,
		"user_session": feedback.UserSession,
	}).Info("Feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

func (h *AgentHandler) bindQuery(c *gin.Context) (models.QueryRequest, bool) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid query request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return req, false
	}

	if strings.TrimSpace(req.TicketID()) == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "chat_context.ticket_id is required", nil)
		return req, false
	}

	if len(req.LatestQuery) == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "latest_query cannot be empty", nil)
		return req, false
	}

	if len(req.QueryText()) > maxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query too long (max 4000 characters)", nil)
		return req, false
	}

	return req, true
}

func (h *AgentHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}

	// Basic fingerprint from IP and User-Agent
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrPatientSourceUnavailable), errors.Is(err, services.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
