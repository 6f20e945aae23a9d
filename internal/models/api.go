package models

import "strings"

// QueryRequest is the body of POST /api/v1/query_llm and /api/v1/correlate
type QueryRequest struct {
	ChatContext   ChatContext     `json:"chat_context" binding:"required"`
	LatestQuery   []QueryFragment `json:"latest_query" binding:"required"`
	IdealResponse string          `json:"ideal_response"`
	ChatHistory   []ChatEntry     `json:"chat_history"`
}

func (r *QueryRequest) TicketID() string {
	return r.ChatContext.TicketID
}

// QueryText joins the fragments the way they are logged and prompted
func (r *QueryRequest) QueryText() string {
	parts := make([]string, len(r.LatestQuery))
	for i, q := range r.LatestQuery {
		parts[i] = q.Content
	}
	return strings.Join(parts, "\n")
}

type QueryResponse struct {
	QueryLogID        uint                `json:"query_log_id,omitempty"`
	TicketID          string              `json:"ticket_id"`
	GeneratedResponse string              `json:"generated_response"`
	IdealResponse     string              `json:"ideal_response,omitempty"`
	Correlations      []CorrelationResult `json:"correlations"`
	SkippedEntries    int                 `json:"skipped_entries"`
	Model             string              `json:"model"`
	ResponseTime      int                 `json:"response_time_ms"`
}

type CorrelateResponse struct {
	TicketID       string              `json:"ticket_id"`
	DietPlanFound  bool                `json:"diet_plan_found"`
	Correlations   []CorrelationResult `json:"correlations"`
	SkippedEntries []string            `json:"skipped_entries,omitempty"`
}

type FeedbackRequest struct {
	QueryLogID uint   `json:"query_log_id" binding:"required"`
	Rating     string `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
