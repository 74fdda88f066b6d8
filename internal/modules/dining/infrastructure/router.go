package infrastructure

import (
	"strings"

	"eateryApi/internal/modules/dining/domain"
)

// DefaultBaseURL is the public eatery API host.
const DefaultBaseURL = "https://eatery-web.herokuapp.com"

// Router builds fully-qualified eatery API URLs. It performs no I/O and does not validate identifiers;
// they are inserted verbatim because catalog ids contain characters such as ',' that the API expects raw.
type Router struct {
	baseURL string
}

// NewRouter returns a Router for baseURL, falling back to DefaultBaseURL when empty.
func NewRouter(baseURL string) Router {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	return Router{baseURL: trimmed}
}

// BaseURL returns the normalized base without a trailing slash.
func (r Router) BaseURL() string {
	return r.baseURL
}

func (r Router) Root() string {
	return r.baseURL + "/"
}

func (r Router) Calendars() string {
	return r.baseURL + "/calendars"
}

func (r Router) Calendar(id string) string {
	return r.baseURL + "/calendar/" + id
}

// CalendarRange covers the hours between two relative days. The API requires the trailing slash.
func (r Router) CalendarRange(id string, start, end domain.DayRef) string {
	return r.baseURL + "/calendar/" + id + "/" + start.String() + "/" + end.String() + "/"
}

func (r Router) Menus() string {
	return r.baseURL + "/menus"
}

func (r Router) Menu(id string) string {
	return r.baseURL + "/menu/" + id
}

func (r Router) MenuMeal(id string, meal domain.MealType) string {
	return r.baseURL + "/menu/" + id + "/" + meal.String()
}

func (r Router) Locations() string {
	return r.baseURL + "/locations"
}

func (r Router) Location(id string) string {
	return r.baseURL + "/location/" + id
}
