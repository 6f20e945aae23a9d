package repository

import (
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"gorm.io/gorm"
)

// QueryLogRepositoryImpl implements QueryLogRepository
type QueryLogRepositoryImpl struct {
	db *gorm.DB
}

func NewQueryLogRepository(db *gorm.DB) models.QueryLogRepository {
	return &QueryLogRepositoryImpl{db: db}
}

func (r *QueryLogRepositoryImpl) Create(log *models.QueryLog) error {
	return r.db.Create(log).Error
}

func (r *QueryLogRepositoryImpl) GetByID(id uint) (*models.QueryLog, error) {
	var log models.QueryLog
	err := r.db.Preload("Feedback").First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *QueryLogRepositoryImpl) GetByTicket(ticketID string) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *QueryLogRepositoryImpl) GetRecent(limit int) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ResponseFeedbackRepositoryImpl implements ResponseFeedbackRepository
type ResponseFeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewResponseFeedbackRepository(db *gorm.DB) models.ResponseFeedbackRepository {
	return &ResponseFeedbackRepositoryImpl{db: db}
}

func (r *ResponseFeedbackRepositoryImpl) Create(feedback *models.ResponseFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *ResponseFeedbackRepositoryImpl) GetByQueryLogID(queryLogID uint) ([]models.ResponseFeedback, error) {
	var feedback []models.ResponseFeedback
	err := r.db.Where("query_log_id = ?", queryLogID).
		Order("created_at").
		Find(&feedback).Error
	return feedback, err
}

func (r *ResponseFeedbackRepositoryImpl) GetByRating(rating string) ([]models.ResponseFeedback, error) {
	var feedback []models.ResponseFeedback
	err := r.db.Where("rating = ?", rating).
		Find(&feedback).Error
	return feedback, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	QueryLog     models.QueryLogRepository
	Feedback     models.ResponseFeedbackRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		QueryLog:     NewQueryLogRepository(db),
		Feedback:     NewResponseFeedbackRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
