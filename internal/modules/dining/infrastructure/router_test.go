package infrastructure

import (
	"testing"

	"eateryApi/internal/modules/dining/domain"
)

func TestRouterEndpoints(t *testing.T) {
	t.Parallel()

	router := NewRouter("https://api.example.edu/")
	base := "https://api.example.edu"

	cases := map[string]struct {
		build    func() string
		expected string
	}{
		"root":           {build: router.Root, expected: base + "/"},
		"calendars":      {build: router.Calendars, expected: base + "/calendars"},
		"calendar":       {build: func() string { return router.Calendar("north_star") }, expected: base + "/calendar/north_star"},
		"calendar range": {build: func() string { return router.CalendarRange("north_star", domain.Today, domain.Tomorrow) }, expected: base + "/calendar/north_star/today/tomorrow/"},
		"menus":          {build: router.Menus, expected: base + "/menus"},
		"menu":           {build: func() string { return router.Menu("okenshields") }, expected: base + "/menu/okenshields"},
		"menu meal":      {build: func() string { return router.MenuMeal("okenshields", domain.Brunch) }, expected: base + "/menu/okenshields/brunch"},
		"locations":      {build: router.Locations, expected: base + "/locations"},
		"location":       {build: func() string { return router.Location("goldies") }, expected: base + "/location/goldies"},
	}

	for name, c := range cases {
		first := c.build()
		second := c.build()
		if first != c.expected {
			t.Fatalf("%s: expected %s, got %s", name, c.expected, first)
		}
		if first != second {
			t.Fatalf("%s: router is not deterministic (%s vs %s)", name, first, second)
		}
	}
}

func TestRouterKeepsIdentifiersVerbatim(t *testing.T) {
	router := NewRouter("")
	id := "jansens_dining_room,_bethe_house"

	if got := router.Calendar(id); got != DefaultBaseURL+"/calendar/"+id {
		t.Fatalf("unexpected calendar url: %s", got)
	}
	if got := router.Calendar("not-in-catalog"); got != DefaultBaseURL+"/calendar/not-in-catalog" {
		t.Fatalf("router must not validate identifiers: %s", got)
	}
}
