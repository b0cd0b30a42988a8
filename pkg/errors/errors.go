package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed ErrorCode = "VDE1001"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "VDE2001"
	ErrCodeConfigInvalid  ErrorCode = "VDE2002"

	// Template errors (3xxx)
	ErrCodeTemplate           ErrorCode = "VDE3001"
	ErrCodeManifestInvalid    ErrorCode = "VDE3002"
	ErrCodeDescriptionInvalid ErrorCode = "VDE3003"

	// Warehouse errors (4xxx)
	ErrCodeSQLExecution ErrorCode = "VDE4001"
	ErrCodeViewNotFound ErrorCode = "VDE4002"
	ErrCodeSchemaUpdate ErrorCode = "VDE4003"

	// File system errors (5xxx)
	ErrCodeFileNotFound  ErrorCode = "VDE5001"
	ErrCodeFileOperation ErrorCode = "VDE5002"

	// Validation errors (6xxx)
	ErrCodeInvalidInput ErrorCode = "VDE6001"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "VDE9001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // The run cannot continue
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation continued with issues
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Severity: SeverityError,
		Context:  make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	var inner *AppError
	if errors.As(err, &inner) {
		for k, v := range inner.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors

// NotFoundError reports a file that a lookup could not locate under root
func NotFoundError(kind, name, root string) *AppError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("%s %q not found under %s", kind, name, root)).
		WithSeverity(SeverityCritical).
		WithContext("name", name).
		WithContext("root", root).
		WithSuggestions(
			fmt.Sprintf("Check that %s exists somewhere below %s", name, root),
			"Run the command from the project root",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' setting", field),
			"Run 'viewdeploy init' to write a default settings file",
		)
}

// TemplateError wraps a template parse or render failure
func TemplateError(template string, cause error) *AppError {
	return Wrap(cause, ErrCodeTemplate, fmt.Sprintf("Failed to render template %s", template)).
		WithSeverity(SeverityCritical).
		WithContext("template", template).
		WithSuggestions("Check the template syntax and the variables in the configuration file")
}

// SQLError creates a warehouse statement error
func SQLError(message string, query string, cause error) *AppError {
	return Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))
}

// IsNotFound reports whether err is a file or view not-found error
func IsNotFound(err error) bool {
	code := GetErrorCode(err)
	return code == ErrCodeFileNotFound || code == ErrCodeViewNotFound || code == ErrCodeConfigNotFound
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
