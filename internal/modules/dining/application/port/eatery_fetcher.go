package port

import (
	"context"
	"errors"

	"eateryApi/internal/modules/dining/domain"
)

var (
	// ErrNetwork covers transport failures, timeouts and unexpected (non-2xx) responses.
	ErrNetwork = errors.New("eatery api unavailable")
	// ErrParse indicates the response body did not match the expected schema.
	ErrParse = errors.New("eatery api response malformed")
	// ErrNotFound indicates the API has no resource for the identifier.
	ErrNotFound = errors.New("eatery resource not found")
	// ErrInvalidIdentifier is returned before any request is made when an identifier is outside its catalog.
	ErrInvalidIdentifier = errors.New("invalid eatery identifier")
)

// ErrorKind classifies a failure for callers that need a single switch instead of errors.Is chains.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindNetwork           ErrorKind = "network"
	KindParse             ErrorKind = "parse"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidIdentifier ErrorKind = "invalid_identifier"
	KindCancelled         ErrorKind = "cancelled"
	KindUnknown           ErrorKind = "unknown"
)

// KindOf returns the ErrorKind for err. Validation and not-found are checked before network so
// wrapped combinations resolve to the most specific kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidIdentifier):
		return KindInvalidIdentifier
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// EateryFetcher retrieves dining resources from the eatery REST API.
type EateryFetcher interface {
	FetchDiningHall(ctx context.Context, id string) (domain.DiningHall, error)
	FetchCalendarRange(ctx context.Context, id string, start, end domain.DayRef) (domain.DiningHall, error)
	FetchMenu(ctx context.Context, id string) (*domain.Menu, error)
	FetchMenuMeal(ctx context.Context, id string, meal domain.MealType) (*domain.Menu, error)
}
