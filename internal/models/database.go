package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		parts := strings.Split(v, ",")
		for i, p := range parts {
			parts[i] = strings.Trim(p, `"`)
		}
		*s = StringArray(parts)
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryLog records one answered ticket query
type QueryLog struct {
	BaseModel
	TicketID          string      `json:"ticket_id" gorm:"not null;index"`
	QueryText         string      `json:"query_text" gorm:"not null"`
	IdealResponse     string      `json:"ideal_response"`
	GeneratedResponse string      `json:"generated_response"`
	Model             string      `json:"model"`
	MealTypes         StringArray `json:"meal_types" gorm:"type:text[]"`
	MatchesCount      int         `json:"matches_count" gorm:"default:0"`
	SkippedCount      int         `json:"skipped_count" gorm:"default:0"`
	DietPlanFound     bool        `json:"diet_plan_found"`
	ResponseTimeMs    int         `json:"response_time_ms"`
	UserSession       string      `json:"user_session"`
	Status            string      `json:"status" gorm:"default:'completed';check:status IN ('completed','failed')"`

	// Associations
	Feedback []ResponseFeedback `json:"feedback" gorm:"foreignKey:QueryLogID"`
}

// ResponseFeedback is a reviewer's rating of a generated answer
type ResponseFeedback struct {
	BaseModel
	QueryLogID  uint   `json:"query_log_id" gorm:"not null"`
	Rating      string `json:"rating" gorm:"not null;check:rating IN ('helpful','not_helpful','partially_helpful')"`
	Comment     string `json:"comment"`
	UserSession string `json:"user_session"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type QueryLogRepository interface {
	Create(log *QueryLog) error
	GetByID(id uint) (*QueryLog, error)
	GetByTicket(ticketID string) ([]QueryLog, error)
	GetRecent(limit int) ([]QueryLog, error)
}

type ResponseFeedbackRepository interface {
	Create(feedback *ResponseFeedback) error
	GetByQueryLogID(queryLogID uint) ([]ResponseFeedback, error)
	GetByRating(rating string) ([]ResponseFeedback, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (QueryLog) TableName() string         { return "query_logs" }
func (ResponseFeedback) TableName() string { return "response_feedback" }
func (SystemHealth) TableName() string     { return "system_health" }

var validRatings = map[string]bool{
	"helpful":           true,
	"not_helpful":       true,
	"partially_helpful": true,
}

// IsValidRating reports whether rating is an accepted feedback value
func IsValidRating(rating string) bool {
	return validRatings[rating]
}

// Model validation methods
func (q *QueryLog) Validate() error {
	if q.TicketID == "" {
		return fmt.Errorf("ticket ID is required")
	}
	if q.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if q.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (f *ResponseFeedback) Validate() error {
	if f.QueryLogID == 0 {
		return fmt.Errorf("query log ID is required")
	}
	if !IsValidRating(f.Rating) {
		return fmt.Errorf("invalid rating: %s", f.Rating)
	}
	return nil
}

// GORM hooks
func (q *QueryLog) BeforeCreate(tx *gorm.DB) error {
	return q.Validate()
}

func (f *ResponseFeedback) BeforeCreate(tx *gorm.DB) error {
	return f.Validate()
}
