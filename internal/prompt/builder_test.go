package prompt

import (
	"context"
	"testing"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	results := []models.CorrelationResult{{
		Timestamp:       "July 2, 2024, 8:25 AM",
		NormalTime:      "08:30",
		MealType:        "breakfast",
		Query:           "Can I have {extra} chai?",
		OrderNo:         2,
		DietNotes:       "Low sodium",
		MealNotes:       "No sugar",
		MealOptionNotes: []string{"Option A", ""},
		FoodNames:       []string{"Oats", "Poha"},
	}}

	messages, err := NewBuilder().Build(context.Background(), "Can I have {extra} chai?", results)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, schema.System, messages[0].Role)
	system := messages[0].Content
	assert.Contains(t, system, "- Plan day: 2")
	assert.Contains(t, system, "- Meal slot: breakfast")
	assert.Contains(t, system, "- Usual meal time: 08:30")
	assert.Contains(t, system, "- Food options: Oats, Poha")
	assert.Contains(t, system, "- Option notes: Option A\n")
	assert.NotContains(t, system, "Day notes")
	assert.NotContains(t, system, "{diet_context}")

	assert.Equal(t, schema.User, messages[1].Role)
	assert.Equal(t, "Can I have {extra} chai?", messages[1].Content)
}

func TestDietContext_NoResults(t *testing.T) {
	assert.Equal(t, NoPlanContext, DietContext(nil))

	messages, err := NewBuilder().Build(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Contains(t, messages[0].Content, NoPlanContext)
}

func TestDietContext_MultipleResults(t *testing.T) {
	out := DietContext([]models.CorrelationResult{
		{Query: "first", MealType: "lunch", OrderNo: 1},
		{Query: "second", MealType: "Invalid time", OrderNo: 1},
	})

	assert.Contains(t, out, `Query 1: "first"`)
	assert.Contains(t, out, `Query 2: "second"`)
	assert.Contains(t, out, "- Meal slot: Invalid time")
}
