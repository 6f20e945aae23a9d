package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const systemTemplate = `You are a clinical nutrition assistant replying to a patient on behalf of their dietitian.

Ground every answer in the patient's diet plan context below. When the context names a meal slot,
answer for that slot and mention the listed food options where relevant. If the plan has no entry
for the patient's question, say so briefly and give conservative general guidance.
Keep replies short, warm and specific. Never invent foods that are not in the plan.

Diet plan context:
{diet_context}`

const userTemplate = `{query}`

// NoPlanContext is used when the ticket has no diet chart or nothing correlated
const NoPlanContext = "No diet plan is available for this patient."

type Builder struct {
	template prompt.ChatTemplate
}

func NewBuilder() *Builder {
	messages := []schema.MessagesTemplate{
		schema.SystemMessage(systemTemplate),
		schema.UserMessage(userTemplate),
	}
	return &Builder{
		template: prompt.FromMessages(schema.FString, messages...),
	}
}

// Build renders the correlation results and the patient's query into chat messages
func (b *Builder) Build(ctx context.Context, query string, results []models.CorrelationResult) ([]*schema.Message, error) {
	messages, err := b.template.Format(ctx, map[string]any{
		"diet_context": DietContext(results),
		"query":        query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}
	return messages, nil
}

// DietContext renders one block per correlated query
func DietContext(results []models.CorrelationResult) string {
	if len(results) == 0 {
		return NoPlanContext
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Query %d: %q asked at %s\n", i+1, r.Query, r.Timestamp)
		fmt.Fprintf(&sb, "- Plan day: %d\n", r.OrderNo)
		fmt.Fprintf(&sb, "- Meal slot: %s\n", r.MealType)
		writeField(&sb, "Usual meal time", r.NormalTime)
		writeField(&sb, "Diet notes", r.DietNotes)
		writeField(&sb, "Day notes", r.DayNotes)
		writeField(&sb, "Meal notes", r.MealNotes)
		for _, note := range r.MealOptionNotes {
			writeField(&sb, "Option notes", note)
		}
		if len(r.FoodNames) > 0 {
			writeField(&sb, "Food options", strings.Join(r.FoodNames, ", "))
		}
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}
