package media

import "errors"

var (
	// ErrMissingIdentifier means a detail record carried no usable id field.
	ErrMissingIdentifier = errors.New("detail record has no usable identifier")
	// ErrMalformedShape means a record could not be read under any known shape.
	ErrMalformedShape = errors.New("detail record has an unrecognized shape")
)

// ErrorKind classifies why a single list entry could not be enriched.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindNetworkFailure    ErrorKind = "network_failure"
	KindMissingIdentifier ErrorKind = "missing_identifier"
	KindMalformedShape    ErrorKind = "malformed_shape"
)

// KindOf maps a normalization or transport error onto an ErrorKind.
// Anything that is not a shape problem is treated as a network failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingIdentifier):
		return KindMissingIdentifier
	case errors.Is(err, ErrMalformedShape):
		return KindMalformedShape
	default:
		return KindNetworkFailure
	}
}
