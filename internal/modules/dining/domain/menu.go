package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"eateryApi/internal/shared/normalization"
)

// FoodItem is a single dish on a menu.
type FoodItem struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Menu groups food items by meal for one dining hall. Menus are built per request and never cached.
type Menu struct {
	HallID string                  `json:"hallId"`
	Meals  map[MealType][]FoodItem `json:"meals"`
}

// Items returns the items served at meal, or nil.
func (m *Menu) Items(meal MealType) []FoodItem {
	if m == nil {
		return nil
	}
	return m.Meals[meal]
}

// Served lists the meals present on the menu in serving order.
func (m *Menu) Served() []MealType {
	if m == nil {
		return nil
	}
	served := make([]MealType, 0, len(m.Meals))
	for _, meal := range MealTypes {
		if _, ok := m.Meals[meal]; ok {
			served = append(served, meal)
		}
	}
	return served
}

// DecodeMenu parses a full menu response: an object keyed by meal name. Each meal holds a list of
// item names, item objects, or {"category", "items"} sections. Unknown keys are ignored, but an
// object with keys and no meal among them is rejected. {} is an empty menu. Keys naming the same
// meal in different case are merged in sorted key order.
func DecodeMenu(hallID string, body []byte) (*Menu, error) {
	object, err := unwrapObject(body)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(object, &raw); err != nil {
		return nil, fmt.Errorf("%w: menu: %v", ErrMalformedPayload, err)
	}

	menu := &Menu{HallID: hallID, Meals: make(map[MealType][]FoodItem)}
	recognised := false
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		meal, ok := ParseMealType(key)
		if !ok {
			continue
		}
		recognised = true
		items, err := decodeMealItems(raw[key])
		if err != nil {
			return nil, fmt.Errorf("%w: menu %s: %v", ErrMalformedPayload, meal, err)
		}
		menu.Meals[meal] = append(menu.Meals[meal], items...)
	}
	if !recognised && len(raw) > 0 {
		return nil, fmt.Errorf("%w: menu has no meals, keys %v", ErrMalformedPayload, slices.Sorted(maps.Keys(raw)))
	}
	return menu, nil
}

// DecodeMealMenu parses a single meal response. The body may be the bare item list or a full menu
// object, in which case only the requested meal is kept.
func DecodeMealMenu(hallID string, meal MealType, body []byte) (*Menu, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var raw []any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("%w: menu %s: %v", ErrMalformedPayload, meal, err)
		}
		items, err := decodeMealItems(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: menu %s: %v", ErrMalformedPayload, meal, err)
		}
		return &Menu{HallID: hallID, Meals: map[MealType][]FoodItem{meal: items}}, nil
	}

	full, err := DecodeMenu(hallID, body)
	if err != nil {
		return nil, err
	}
	single := &Menu{HallID: hallID, Meals: make(map[MealType][]FoodItem, 1)}
	if items, ok := full.Meals[meal]; ok {
		single.Meals[meal] = items
	}
	return single, nil
}

func decodeMealItems(value any) ([]FoodItem, error) {
	if value == nil {
		return []FoodItem{}, nil
	}
	entries, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", value)
	}
	items := make([]FoodItem, 0, len(entries))
	for _, entry := range entries {
		switch typed := entry.(type) {
		case string:
			if name := strings.TrimSpace(typed); name != "" {
				items = append(items, FoodItem{Name: name})
			}
		case map[string]any:
			category := normalization.AsString(typed["category"])
			if nested, ok := typed["items"]; ok {
				section, err := decodeMealItems(nested)
				if err != nil {
					return nil, err
				}
				for _, item := range section {
					if item.Category == "" {
						item.Category = category
					}
					items = append(items, item)
				}
				continue
			}
			name := normalization.AsString(firstPresent(typed, "name", "item", "title"))
			if name == "" {
				continue
			}
			items = append(items, FoodItem{Name: name, Category: category})
		default:
			return nil, fmt.Errorf("unsupported item %T", entry)
		}
	}
	return items, nil
}
