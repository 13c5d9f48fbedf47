package shopping

import "time"

// ShoppingList is the de-duplicated ingredient list for a span of plan days.
type ShoppingList struct {
	WeekKey   string    `json:"week_key"`
	Week      int       `json:"week"`
	FromDay   int       `json:"from_day"`
	ToDay     int       `json:"to_day"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}
