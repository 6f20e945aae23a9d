package correlation

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/mealslot"
	"github.com/Ayash-Bera/nutri-agent/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrNoDietPlanFound marks a ticket whose patient record carries no diet chart
var ErrNoDietPlanFound = errors.New("no diet plan found for this ticket ID")

// Options tune behavior that downstream consumers may depend on
type Options struct {
	// ResetPerResult clears meal notes, timings and option notes when a result finds
	// no matching day or meal. By default they carry over from the previous result.
	ResetPerResult bool

	// ClassifyISOTimes lets ISO-only timestamps pick a meal slot from their own clock.
	// By default only chat-layout timestamps can be classified.
	ClassifyISOTimes bool
}

// Engine correlates matched chat queries with a diet chart. It holds no per-call state.
type Engine struct {
	classifier *mealslot.Classifier
	options    Options
	logger     *logrus.Logger
}

func NewEngine(classifier *mealslot.Classifier, options Options, logger *logrus.Logger) *Engine {
	if classifier == nil {
		classifier = mealslot.NewClassifier(mealslot.DefaultTable())
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		classifier: classifier,
		options:    options,
		logger:     logger,
	}
}

func (e *Engine) Options() Options {
	return e.options
}

// MatchQueries pairs every query fragment with every chat entry whose message equals it.
// Order follows fragments, then history; duplicates are kept.
func MatchQueries(fragments []models.QueryFragment, history []models.ChatEntry) []models.QueryMatch {
	var matches []models.QueryMatch
	for _, q := range fragments {
		for _, chat := range history {
			if chat.Message == q.Content {
				matches = append(matches, models.QueryMatch{
					Timestamp: chat.Timestamp,
					Query:     q.Content,
				})
			}
		}
	}
	return matches
}

// carried holds the lookup values that survive into later results when nothing matches
type carried struct {
	normalTime  string
	dayNotes    string
	mealNotes   string
	optionNotes []string
}

// Correlate resolves each matched query to its plan day, meal slot and diet annotations.
// A nil chart yields no results. Entries whose timestamps cannot be parsed are skipped
// and reported in the returned error slice; the rest still produce results.
func (e *Engine) Correlate(chart *models.DietChart, fragments []models.QueryFragment, history []models.ChatEntry) ([]models.CorrelationResult, []error) {
	results := []models.CorrelationResult{}
	if chart == nil {
		e.logger.Debug("No diet chart available, skipping correlation")
		return results, nil
	}

	matches := MatchQueries(fragments, history)
	if len(matches) == 0 {
		e.logger.WithField("fragments", len(fragments)).Debug("No chat entries matched the query")
		return results, nil
	}

	start, err := ParseTimestamp(chart.StartDate)
	if err != nil {
		e.logger.WithError(err).Warn("Diet chart start date is unparsable")
		return results, []error{fmt.Errorf("diet chart start date: %w", err)}
	}

	var (
		errs  []error
		state carried
	)
	for _, match := range matches {
		result, err := e.correlateOne(chart, start, match, &state)
		if err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"timestamp": match.Timestamp,
				"query":     match.Query,
			}).Warn("Skipping chat entry")
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}

	e.logger.WithFields(logrus.Fields{
		"matches": len(matches),
		"results": len(results),
		"skipped": len(errs),
	}).Debug("Added all essential details related to query")

	return results, errs
}

func (e *Engine) correlateOne(chart *models.DietChart, start time.Time, match models.QueryMatch, state *carried) (models.CorrelationResult, error) {
	at, err := ParseTimestamp(match.Timestamp)
	if err != nil {
		return models.CorrelationResult{}, err
	}
	orderNo := DayOrder(start, at)

	mealType, err := e.mealType(match.Timestamp, at)
	if err != nil {
		return models.CorrelationResult{}, err
	}

	if e.options.ResetPerResult {
		*state = carried{}
	}

	foodNames := []string{}
	if day, ok := chart.Day(orderNo); ok {
		state.dayNotes = day.Notes
		if meal, ok := findMeal(day, mealType); ok {
			state.mealNotes = meal.Notes
			state.normalTime = meal.Timings
			state.optionNotes = make([]string, 0, len(meal.MealOptions))
			for _, option := range meal.MealOptions {
				state.optionNotes = append(state.optionNotes, option.Notes)
				for _, item := range option.FoodItems {
					foodNames = append(foodNames, item.Food.Name)
				}
			}
		}
	}

	return models.CorrelationResult{
		Timestamp:       match.Timestamp,
		NormalTime:      state.normalTime,
		MealType:        mealType,
		Query:           match.Query,
		OrderNo:         orderNo,
		DietNotes:       chart.Notes,
		DayNotes:        state.dayNotes,
		MealNotes:       state.mealNotes,
		MealOptionNotes: append([]string{}, state.optionNotes...),
		FoodNames:       foodNames,
	}, nil
}

// mealType classifies the chat-layout clock of the timestamp
func (e *Engine) mealType(raw string, parsed time.Time) (string, error) {
	clock, err := ParseClockTimestamp(raw)
	if err != nil {
		if !e.options.ClassifyISOTimes {
			return "", err
		}
		clock = parsed
	}
	return e.classifier.ClassifyTime(clock), nil
}

func findMeal(day *models.PlanDay, mealType string) (*models.Meal, bool) {
	for i := range day.Meals {
		if mealslot.SameLabel(day.Meals[i].Name, mealType) {
			return &day.Meals[i], true
		}
	}
	return nil, false
}
