package recommend

import "errors"

// Errors returned by recommender operations.
var (
	// ErrInvalidRequest is returned when a request violates a precondition,
	// such as supplying neither a user nor a book anchor.
	ErrInvalidRequest = errors.New("either a user or a book anchor is required")

	// ErrModelNotTrained is returned when a query needs a model that has
	// never been fitted or loaded. Callers should trigger training.
	ErrModelNotTrained = errors.New("recommendation model not trained")

	// ErrUnsupportedVersion is returned when a persisted blob was written
	// with an incompatible payload format.
	ErrUnsupportedVersion = errors.New("unsupported model payload version")
)
