package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Mapping pairs a sentinel error with the HTTP status and public message it produces.
type Mapping struct {
	Target  error
	Status  int
	Message string
}

// ErrorMapper translates wrapped errors into HTTP responses. Mappings are checked in
// registration order after the context errors.
type ErrorMapper struct {
	mappings       []Mapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper(mappings ...Mapping) *ErrorMapper {
	return &ErrorMapper{
		mappings:       append([]Mapping(nil), mappings...),
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// With appends a mapping and returns the mapper for chaining.
func (m *ErrorMapper) With(target error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, Mapping{Target: target, Status: status, Message: message})
	return m
}

// WithDefault sets the response for errors no mapping matches.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// Map returns the status and message for err. A nil error maps to 200.
func (m *ErrorMapper) Map(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	}
	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Target) {
			return mapping.Status, mapping.Message
		}
	}
	return m.defaultStatus, m.defaultMessage
}

// HTTPError wraps Map into an echo error with err kept as the internal cause.
func (m *ErrorMapper) HTTPError(err error) *echo.HTTPError {
	status, message := m.Map(err)
	return echo.NewHTTPError(status, message).SetInternal(err)
}
