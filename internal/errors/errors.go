package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeUsage         ErrorType = "USAGE"
	TypeNetwork       ErrorType = "NETWORK"
	TypeSOAP          ErrorType = "SOAP"
	TypeParse         ErrorType = "PARSE"
	TypeExternal      ErrorType = "EXTERNAL"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError derived from the same sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsUsage reports whether err is a command-line usage error.
func IsUsage(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == TypeUsage
	}
	return false
}

// UsageMessage returns the text printed after "error:" for usage errors.
func UsageMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if v, ok := appErr.Context["arguments"].(string); ok {
		return fmt.Sprintf("%s: %s", appErr.Message, v)
	}
	if v, ok := appErr.Context["argument"].(string); ok {
		return fmt.Sprintf("%q %s", v, appErr.Message)
	}
	return appErr.Message
}

// Usage errors
var (
	ErrInvalidBugSpec = NewAppError(TypeUsage, "is not a valid bug number", nil).
				WithSuggestion("Use a bug number (123456, #123456) or https://bugs.debian.org/123456")

	ErrInvalidPackageName = NewAppError(TypeUsage, "is not a valid package name", nil)

	ErrUnknownSelector = NewAppError(TypeUsage, "is not a known selector", nil).
				WithSuggestion("Known selectors: package, src, maint, owner, submitter, correspondent, newest, srcfor, tag, severity")

	ErrInvalidSeverity = NewAppError(TypeUsage, "is not a valid severity", nil).
				WithSuggestion("Valid severities: critical, grave, serious, important, normal, minor, wishlist")

	ErrMissingArgument = NewAppError(TypeUsage, "the following arguments are required", nil)

	ErrExtraArguments = NewAppError(TypeUsage, "unrecognized arguments", nil)

	ErrInvalidAttachment = NewAppError(TypeUsage, "is not a readable file", nil)

	ErrInvalidFormat = NewAppError(TypeUsage, "is not a valid output format", nil).
				WithSuggestion("Use one of: text, json, yaml")
)

// Network errors
var (
	ErrHTTPRequest = NewAppError(TypeNetwork, "HTTP request failed", nil).
			WithSuggestion("Check your network connection and that bugs.debian.org is reachable")

	ErrHTTPStatus = NewAppError(TypeNetwork, "unexpected HTTP status", nil)

	ErrDecodeResponse = NewAppError(TypeNetwork, "failed to decode response body", nil)
)

// SOAP errors
var (
	ErrSOAPFault = NewAppError(TypeSOAP, "SOAP fault", nil)

	ErrSOAPMalformed = NewAppError(TypeSOAP, "malformed SOAP response", nil)

	ErrSOAPArgument = NewAppError(TypeSOAP, "unsupported SOAP argument type", nil)

	ErrBugNotFound = NewAppError(TypeSOAP, "bug not found", nil)
)

// Parse errors
var (
	ErrDotSyntax = NewAppError(TypeParse, "invalid version graph", nil)

	ErrHTMLParse = NewAppError(TypeParse, "failed to parse bug report page", nil)

	ErrControlFile = NewAppError(TypeParse, "failed to parse control file", nil)
)

// External command errors
var (
	ErrCommandFailed = NewAppError(TypeExternal, "external command failed", nil)

	ErrPager = NewAppError(TypeExternal, "pager failed", nil).
			WithSuggestion("Set PAGER to a working pager, or run with --no-pager")

	ErrMailClient = NewAppError(TypeExternal, "failed to start mail client", nil).
			WithSuggestion("Set mail_client in the configuration file")

	ErrPackageNotInstalled = NewAppError(TypeExternal, "package is not installed", nil)
)

// Configuration errors
var (
	ErrConfigRead = NewAppError(TypeConfiguration, "failed to read configuration", nil)

	ErrConfigInvalid = NewAppError(TypeConfiguration, "invalid configuration", nil).
				WithSuggestion("Check the configuration file: dbts config show")
)
