package services

// ValidationError is returned before any provider call when the request is
// unusable.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// ConfigurationError means the provider credentials are missing or invalid.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// ProviderError covers every other failure of the external model call.
type ProviderError struct{ Err error }

func (e *ProviderError) Error() string { return e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }
