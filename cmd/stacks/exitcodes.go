package main

// Exit codes used by all commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (not a repository, invalid config)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
	ExitNotTrained  = 4 // Recommendation model not trained yet
	ExitNotFound    = 5 // Book or activity not found
)
