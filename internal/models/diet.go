package models

// PatientRecord is one entry of the patient-data source
type PatientRecord struct {
	ChatContext    ChatContext    `json:"chat_context"`
	ProfileContext ProfileContext `json:"profile_context"`
}

type ChatContext struct {
	TicketID string `json:"ticket_id"`
}

type ProfileContext struct {
	DietChart *DietChart `json:"diet_chart"`
}

// DietChart is a patient's diet plan. StartDate is plan day 1.
type DietChart struct {
	StartDate   string    `json:"start_date"`
	Notes       string    `json:"notes"`
	MealsByDays []PlanDay `json:"meals_by_days"`
}

// PlanDay is addressed by its 1-based Order offset from the start date
type PlanDay struct {
	Order int    `json:"order"`
	Notes string `json:"notes"`
	Meals []Meal `json:"meals"`
}

type Meal struct {
	Name        string       `json:"name"`
	Notes       string       `json:"notes"`
	Timings     string       `json:"timings"`
	MealOptions []MealOption `json:"meal_options"`
}

type MealOption struct {
	Notes     string               `json:"notes"`
	FoodItems []MealOptionFoodItem `json:"meal_option_food_items"`
}

type MealOptionFoodItem struct {
	Food Food `json:"Food"`
}

type Food struct {
	Name string `json:"name"`
}

// Day returns the first plan day with the given order
// IsEmpty reports a chart with neither a start date nor any plan days, as decoded from "{}"
func (d *DietChart) IsEmpty() bool {
	return d.StartDate == "" && len(d.MealsByDays) == 0
}

func (d *DietChart) Day(order int) (*PlanDay, bool) {
	for i := range d.MealsByDays {
		if d.MealsByDays[i].Order == order {
			return &d.MealsByDays[i], true
		}
	}
	return nil, false
}
