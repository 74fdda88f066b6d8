package domain

import "errors"

// ErrMalformedPayload marks a response body whose shape does not match the expected schema.
var ErrMalformedPayload = errors.New("malformed payload")
