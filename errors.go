package openmetrics

import "errors"

// Namespace prefixes all error messages produced by this module.
const Namespace = "openmetrics"

// Error kinds. Every error returned by this module wraps exactly one of these
// sentinels and can be classified with errors.Is.
var (
	// ErrInvalid reports a malformed name, help text, unit or label, or a
	// conflicting option combination, detected at registration time.
	ErrInvalid = errors.New(Namespace + ": invalid")

	// ErrDuplicated reports a metric registered twice under identical metadata,
	// a subsystem rebuilt with incompatible constant labels, or distinct names
	// colliding after escaping at encode time.
	ErrDuplicated = errors.New(Namespace + ": duplicated")

	// ErrUnsupported reports an attempt to encode a metric type that the
	// selected exposition profile cannot represent.
	ErrUnsupported = errors.New(Namespace + ": unsupported")

	// ErrUnexpected wraps low-level write or encoding failures.
	ErrUnexpected = errors.New(Namespace + ": unexpected")
)
