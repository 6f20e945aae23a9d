//go:build integration

package repository

import (
	"os"
	"testing"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestIntegration_QueryLogAndFeedback(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL required for integration tests")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.QueryLog{}, &models.ResponseFeedback{}, &models.SystemHealth{}))

	repos := NewRepositoryManager(db)

	log := &models.QueryLog{
		TicketID:      "integration-ticket",
		QueryText:     "can I eat rice at dinner?",
		Model:         "gpt-4o-mini",
		MealTypes:     models.StringArray{"dinner"},
		MatchesCount:  1,
		DietPlanFound: true,
	}
	require.NoError(t, repos.QueryLog.Create(log))
	defer db.Delete(&models.QueryLog{}, log.ID)

	require.NoError(t, repos.Feedback.Create(&models.ResponseFeedback{QueryLogID: log.ID, Rating: "helpful"}))

	got, err := repos.QueryLog.GetByID(log.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringArray{"dinner"}, got.MealTypes)
	require.Len(t, got.Feedback, 1)

	byTicket, err := repos.QueryLog.GetByTicket("integration-ticket")
	require.NoError(t, err)
	assert.NotEmpty(t, byTicket)

	assert.Error(t, repos.Feedback.Create(&models.ResponseFeedback{QueryLogID: log.ID, Rating: "meh"}))

	require.NoError(t, repos.SystemHealth.UpdateServiceHealth("integration", "healthy", 3, ""))
	health, err := repos.SystemHealth.GetServiceHealth("integration")
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}
