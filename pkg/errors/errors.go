// Package errors provides enhanced error types with context and recovery
// metadata for gradlex. These errors carry suggestions, a context map, and
// lightweight stack traces to improve user diagnostics and recovery.
package errors

import (
	"runtime"
	"strings"
)

// ErrorCode categorizes errors for handling
type ErrorCode string

const (
	// Invocation errors
	ErrGradleNotFound    ErrorCode = "GRADLE_NOT_FOUND"
	ErrExecFailed        ErrorCode = "EXEC_FAILED"
	ErrUnexpectedSuccess ErrorCode = "UNEXPECTED_BUILD_SUCCESS"
	ErrStartUnsupported  ErrorCode = "START_UNSUPPORTED"

	// Daemon errors
	ErrDaemonUnreachable ErrorCode = "DAEMON_UNREACHABLE"

	// buildSrc errors
	ErrBuildSrcFailed         ErrorCode = "BUILDSRC_FAILED"
	ErrBuildSrcCacheCorrupted ErrorCode = "BUILDSRC_CACHE_CORRUPTED"

	// Tooling model errors
	ErrModelFetch ErrorCode = "MODEL_FETCH_FAILED"

	// Repository errors
	ErrRepoInvalid ErrorCode = "REPOSITORY_INVALID"

	// Filesystem errors
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"
	ErrPermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Unknown errors
	ErrUnknown ErrorCode = "UNKNOWN"
)

// StackFrame represents a single stack frame
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// GradlexError is the base error type with rich context
type GradlexError struct {
	Code        ErrorCode         `json:"code"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	Suggestion  string            `json:"suggestion,omitempty"`
	Cause       error             `json:"-"`
	Context     map[string]string `json:"context,omitempty"`
	Recoverable bool              `json:"recoverable"`
	Stack       []StackFrame      `json:"stack,omitempty"`
}

// Error implements the error interface
func (e *GradlexError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}
	if e.Cause != nil {
		sb.WriteString("\nCaused by: ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the cause to errors.Is/As
func (e *GradlexError) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for fixing the error
func (e *GradlexError) WithSuggestion(suggestion string) *GradlexError {
	e.Suggestion = suggestion
	return e
}

// WithContext adds contextual information
func (e *GradlexError) WithContext(key, value string) *GradlexError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps another error
func (e *GradlexError) WithCause(cause error) *GradlexError {
	e.Cause = cause
	return e
}

// WithDetails adds detailed information
func (e *GradlexError) WithDetails(details string) *GradlexError {
	e.Details = details
	return e
}

// New creates a new GradlexError
func New(code ErrorCode, message string) *GradlexError {
	err := &GradlexError{
		Code:        code,
		Message:     message,
		Recoverable: isRecoverable(code),
		Context:     make(map[string]string),
	}
	err.captureStack()
	err.Suggestion = getDefaultSuggestion(code)
	return err
}

// Wrap wraps a standard error with GradlexError
func Wrap(err error, code ErrorCode, message string) *GradlexError {
	if err == nil {
		return nil
	}
	if gxErr, ok := err.(*GradlexError); ok {
		// Prepend message context
		if message != "" {
			gxErr.Message = message + ": " + gxErr.Message
		}
		return gxErr
	}
	return New(code, message).WithCause(err)
}

// captureStack captures the current stack trace
func (e *GradlexError) captureStack() {
	const maxFrames = 10
	pc := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pc) // Skip runtime.Callers, captureStack, New/Wrap
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if strings.Contains(frame.File, "runtime/") || strings.Contains(frame.File, "testing/") {
			if !more {
				break
			}
			continue
		}
		e.Stack = append(e.Stack, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
}

// isRecoverable determines if an error can be automatically recovered
func isRecoverable(code ErrorCode) bool {
	switch code {
	case ErrDaemonUnreachable, ErrBuildSrcCacheCorrupted:
		return true
	default:
		return false
	}
}

// getDefaultSuggestion provides default fix suggestions
func getDefaultSuggestion(code ErrorCode) string {
	suggestions := map[ErrorCode]string{
		ErrGradleNotFound:         "Install Gradle or set GRADLEX_GRADLE to the executable path",
		ErrExecFailed:             "Re-run with --verbose to see the full build output",
		ErrUnexpectedSuccess:      "The build was expected to fail but passed; check the assertion",
		ErrStartUnsupported:       "Use run instead, or switch to a forking executer",
		ErrDaemonUnreachable:      "Stop stale daemons: gradle --stop",
		ErrBuildSrcFailed:         "Fix the buildSrc build, then retry",
		ErrBuildSrcCacheCorrupted: "Remove buildSrc/.gradlex and rebuild",
		ErrModelFetch:             "Check that the project directory contains a Gradle build",
		ErrRepoInvalid:            "Check the repository definition URLs",
		ErrPermissionDenied:       "Check file permissions",
		ErrInvalidConfig:          "Fix ~/.gradlex.json or delete it to use defaults",
	}
	if s, ok := suggestions[code]; ok {
		return s
	}
	return "Re-run with --debug for a stack trace"
}
