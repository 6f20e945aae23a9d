package models

// QueryFragment is one piece of the user's latest query
type QueryFragment struct {
	Content string `json:"content"`
}

// ChatEntry is a timestamped message from the ticket's conversation
type ChatEntry struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// QueryMatch pairs a query with the timestamp of a chat message equal to it
type QueryMatch struct {
	Timestamp string `json:"timestamp"`
	Query     string `json:"query"`
}

// CorrelationResult is the diet guidance found for one matched query
type CorrelationResult struct {
	Timestamp       string   `json:"timestamp"`
	NormalTime      string   `json:"normal_time"`
	MealType        string   `json:"meal_type"`
	Query           string   `json:"query"`
	OrderNo         int      `json:"order_no"`
	DietNotes       string   `json:"diet_notes"`
	DayNotes        string   `json:"day_notes,omitempty"`
	MealNotes       string   `json:"meal_notes"`
	MealOptionNotes []string `json:"meal_food_options"`
	FoodNames       []string `json:"food_names"`
}
