package domain

import "strings"

// MealType identifies a meal section of a menu.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Brunch    MealType = "brunch"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists meals in serving order.
var MealTypes = []MealType{Breakfast, Brunch, Lunch, Dinner}

var allowedMeals = map[string]MealType{
	string(Breakfast): Breakfast,
	string(Brunch):    Brunch,
	string(Lunch):     Lunch,
	string(Dinner):    Dinner,
}

// ParseMealType resolves a meal name case-insensitively. The API mixes "Brunch" and "brunch".
func ParseMealType(raw string) (MealType, bool) {
	meal, ok := allowedMeals[strings.ToLower(strings.TrimSpace(raw))]
	return meal, ok
}

func (m MealType) String() string {
	return string(m)
}

// DayRef is a relative day accepted by the calendar range endpoint.
type DayRef string

const (
	Today    DayRef = "today"
	Tomorrow DayRef = "tomorrow"
)

// ParseDayRef resolves today/tomorrow case-insensitively.
func ParseDayRef(raw string) (DayRef, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(Today):
		return Today, true
	case string(Tomorrow):
		return Tomorrow, true
	default:
		return "", false
	}
}

func (d DayRef) String() string {
	return string(d)
}
