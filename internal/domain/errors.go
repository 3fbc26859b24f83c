package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the chatbot's failure classes. Typed errors below
// match them through errors.Is so callers can branch on either form.
var (
	// ErrAuth indicates missing or invalid credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrIO indicates a storage write or read that could not complete.
	ErrIO = errors.New("storage I/O failed")

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyCorpus indicates that a partition has no ingestible documents.
	ErrEmptyCorpus = errors.New("no documents available for this team")

	// ErrConfig indicates an invalid configuration value.
	ErrConfig = errors.New("invalid configuration")

	// ErrProviderMismatch indicates an index built with a different embedding provider.
	ErrProviderMismatch = errors.New("embedding provider mismatch")

	// ErrAnswerGeneration indicates the responder could not produce an answer.
	ErrAnswerGeneration = errors.New("answer generation failed")
)

// AuthError carries the username a login or token check failed for.
type AuthError struct {
	Username string
	Reason   string
}

func (e *AuthError) Error() string {
	if e.Username == "" {
		return fmt.Sprintf("authentication failed: %s", e.Reason)
	}
	return fmt.Sprintf("authentication failed for %q: %s", e.Username, e.Reason)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// IOError wraps a filesystem or database failure with the operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// UnsupportedFormatError reports a file whose extension has no extractor.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s", e.Extension, e.Name)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ProviderMismatchError reports a query embedded with a provider other than
// the one the index was built with.
type ProviderMismatchError struct {
	IndexProvider string
	QueryProvider string
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("index built with %q cannot be queried with %q", e.IndexProvider, e.QueryProvider)
}

func (e *ProviderMismatchError) Is(target error) bool { return target == ErrProviderMismatch }

// AnswerGenerationError wraps a responder failure. Retryable reports whether
// the user can expect a retry to succeed.
type AnswerGenerationError struct {
	Err       error
	Retryable bool
}

func (e *AnswerGenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *AnswerGenerationError) Unwrap() error { return e.Err }

func (e *AnswerGenerationError) Is(target error) bool { return target == ErrAnswerGeneration }
