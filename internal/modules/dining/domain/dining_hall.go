package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"eateryApi/internal/shared/normalization"
)

// PaymentMethod is a tender accepted at a dining hall.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentSwipe PaymentMethod = "swipe"
	PaymentBRB   PaymentMethod = "BRB"
)

var knownPayments = map[string]PaymentMethod{
	"cash":   PaymentCash,
	"swipe":  PaymentSwipe,
	"swipes": PaymentSwipe,
	"brb":    PaymentBRB,
	"brbs":   PaymentBRB,
}

// NormalizePaymentMethod maps API spellings onto the known vocabulary and keeps unknown values verbatim.
func NormalizePaymentMethod(raw string) PaymentMethod {
	trimmed := strings.TrimSpace(raw)
	if known, ok := knownPayments[strings.ToLower(trimmed)]; ok {
		return known
	}
	return PaymentMethod(trimmed)
}

// Coordinate is a WGS84 position.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// UnmarshalJSON accepts {"lat":..,"lng"|"lon"|"long":..} objects and [lat, lng] pairs. Both
// values must be numbers.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeCoordinate(data)
	if err != nil {
		return err
	}
	if decoded == nil {
		return fmt.Errorf("coordinate needs a numeric latitude and longitude")
	}
	*c = *decoded
	return nil
}

// DecodeCoordinate parses a position in any shape UnmarshalJSON accepts. It returns nil, meaning
// the position is unknown, for null, empty objects and pairs missing either number.
func DecodeCoordinate(data []byte) (*Coordinate, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var lat, lng any
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		lat = firstPresent(typed, "lat", "latitude")
		lng = firstPresent(typed, "lng", "lon", "long", "longitude")
	case []any:
		if len(typed) == 1 || len(typed) > 2 {
			return nil, fmt.Errorf("coordinate pair needs two values, got %d", len(typed))
		}
		if len(typed) == 2 {
			lat, lng = typed[0], typed[1]
		}
	default:
		return nil, fmt.Errorf("coordinate has unsupported shape %T", raw)
	}

	latitude, okLat := normalization.Float64(lat)
	longitude, okLng := normalization.Float64(lng)
	if !okLat || !okLng {
		return nil, nil
	}
	return &Coordinate{Latitude: latitude, Longitude: longitude}, nil
}

func firstPresent(values map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := values[key]; ok {
			return value
		}
	}
	return nil
}

// TimeRange is one opening interval. Its schema is not published by the API, so the raw record is kept.
type TimeRange json.RawMessage

func (t TimeRange) MarshalJSON() ([]byte, error) {
	if len(t) == 0 {
		return []byte("null"), nil
	}
	return []byte(t), nil
}

func (t *TimeRange) UnmarshalJSON(data []byte) error {
	*t = append((*t)[:0], data...)
	return nil
}

// DiningHall is a campus eatery as described by its calendar resource.
type DiningHall struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Summary        string          `json:"summary"`
	Location       *Coordinate     `json:"location,omitempty"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	Hours          []TimeRange     `json:"hours"`
}

// Clone returns a deep copy so callers never share slices with the owner of the original.
func (d DiningHall) Clone() DiningHall {
	cloned := d
	if d.Location != nil {
		loc := *d.Location
		cloned.Location = &loc
	}
	cloned.PaymentMethods = append([]PaymentMethod(nil), d.PaymentMethods...)
	if d.Hours != nil {
		cloned.Hours = make([]TimeRange, len(d.Hours))
		for i, h := range d.Hours {
			cloned.Hours[i] = append(TimeRange(nil), h...)
		}
	}
	return cloned
}

// Accepts reports whether the hall takes the given payment method.
func (d DiningHall) Accepts(method PaymentMethod) bool {
	for _, m := range d.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

type diningHallPayload struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Summary           string          `json:"summary"`
	Description       string          `json:"description"`
	Location          json.RawMessage `json:"location"`
	Coordinates       json.RawMessage `json:"coordinates"`
	PaymentMethods    []string        `json:"paymentMethods"`
	PaymentMethodsAlt []string        `json:"payment_methods"`
	Hours             []TimeRange     `json:"hours"`
}

// DecodeDiningHall parses a calendar response body. An envelope of the form {"data": {...}} is unwrapped.
func DecodeDiningHall(body []byte) (DiningHall, error) {
	object, err := unwrapObject(body)
	if err != nil {
		return DiningHall{}, err
	}

	var payload diningHallPayload
	if err := json.Unmarshal(object, &payload); err != nil {
		return DiningHall{}, fmt.Errorf("%w: dining hall: %v", ErrMalformedPayload, err)
	}

	id := strings.TrimSpace(payload.ID)
	if id == "" {
		return DiningHall{}, fmt.Errorf("%w: dining hall missing id", ErrMalformedPayload)
	}

	location, err := firstCoordinate(payload.Location, payload.Coordinates)
	if err != nil {
		return DiningHall{}, fmt.Errorf("%w: dining hall %s location: %v", ErrMalformedPayload, id, err)
	}

	hall := DiningHall{
		ID:       id,
		Name:     strings.TrimSpace(payload.Name),
		Summary:  strings.TrimSpace(payload.Summary),
		Location: location,
		Hours:    payload.Hours,
	}
	if hall.Summary == "" {
		hall.Summary = strings.TrimSpace(payload.Description)
	}
	methods := payload.PaymentMethods
	if len(methods) == 0 {
		methods = payload.PaymentMethodsAlt
	}
	hall.PaymentMethods = normalizePaymentMethods(methods)
	if hall.Hours == nil {
		hall.Hours = []TimeRange{}
	}
	return hall, nil
}

// firstCoordinate returns the first known position among candidates, or nil.
func firstCoordinate(candidates ...json.RawMessage) (*Coordinate, error) {
	for _, raw := range candidates {
		if len(raw) == 0 {
			continue
		}
		coord, err := DecodeCoordinate(raw)
		if err != nil {
			return nil, err
		}
		if coord != nil {
			return coord, nil
		}
	}
	return nil, nil
}

func normalizePaymentMethods(raw []string) []PaymentMethod {
	methods := make([]PaymentMethod, 0, len(raw))
	seen := make(map[PaymentMethod]struct{}, len(raw))
	for _, entry := range raw {
		method := NormalizePaymentMethod(entry)
		if method == "" {
			continue
		}
		if _, dup := seen[method]; dup {
			continue
		}
		seen[method] = struct{}{}
		methods = append(methods, method)
	}
	return methods
}

func unwrapObject(body []byte) (json.RawMessage, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, fmt.Errorf("%w: expected JSON object: %v", ErrMalformedPayload, err)
	}
	if object == nil {
		return nil, fmt.Errorf("%w: expected JSON object, got null", ErrMalformedPayload)
	}
	if data, ok := object["data"]; ok {
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "{") {
			return data, nil
		}
	}
	return body, nil
}
