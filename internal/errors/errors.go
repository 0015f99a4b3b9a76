// Package errors provides the typed failure taxonomy of the retiming engine.
// Every failure that crosses a component boundary carries a Code so callers
// can tell bad input apart from media, extraction and encode failures.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents an error code for categorization.
type Code string

const (
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnknownEasing   Code = "UNKNOWN_EASING"
	CodeMissingClip     Code = "MISSING_CLIP"
	CodeMediaProbe      Code = "MEDIA_PROBE_ERROR"
	CodeFrameExtraction Code = "FRAME_EXTRACTION_ERROR"
	CodeEncode          Code = "ENCODE_ERROR"
)

// Error is a custom error type with additional context.
type Error struct {
	// Code is the error code for categorization.
	Code Code
	// Op is the operation that failed (e.g., "stitch.probe").
	Op string
	// Message is the human-readable error message.
	Message string
	// Err is the underlying error.
	Err error
	// Fields contains additional context fields.
	Fields map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	if e.Code != "" {
		b.WriteString("[")
		b.WriteString(string(e.Code))
		b.WriteString("] ")
	}

	b.WriteString(e.Message)

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error. Two *Error values match
// when their codes are equal.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithField adds a field to the error.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// WithOp sets the failing operation.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// New creates a new error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new error with formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. A nil err yields nil.
func Wrap(err error, code Code, op string, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code Code, op string, format string, args ...any) *Error {
	return Wrap(err, code, op, fmt.Sprintf(format, args...))
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// ValidationField creates a validation error for a specific field.
func ValidationField(field string, message string) *Error {
	return New(CodeValidation, message).WithField("field", field)
}

// UnknownEasing reports an easing name missing from the registry.
func UnknownEasing(name string) *Error {
	return Newf(CodeUnknownEasing, "unknown easing %q", name).WithField("name", name)
}

// MissingClips reports every clip path that does not exist or is empty.
func MissingClips(paths []string, causes []error) *Error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return &Error{
		Code:    CodeMissingClip,
		Message: fmt.Sprintf("%d clip(s) missing or empty: %s", len(paths), strings.Join(sorted, ", ")),
		Err:     errors.Join(causes...),
		Fields:  map[string]any{"paths": sorted},
	}
}

// MediaProbe creates a probe failure for a single path.
func MediaProbe(path string, err error) *Error {
	return Wrapf(err, CodeMediaProbe, "probe", "cannot read media %s", path).WithField("path", path)
}

// MediaProbeAll aggregates probe failures across several clips.
func MediaProbeAll(paths []string, causes []error) *Error {
	return &Error{
		Code:    CodeMediaProbe,
		Message: fmt.Sprintf("%d clip(s) could not be probed: %s", len(paths), strings.Join(paths, ", ")),
		Err:     errors.Join(causes...),
		Fields:  map[string]any{"paths": append([]string(nil), paths...)},
	}
}

// FrameExtraction creates a frame extraction failure.
func FrameExtraction(path string, timestamp float64, err error) *Error {
	return Wrapf(err, CodeFrameExtraction, "extract", "cannot extract frame at %.6fs from %s", timestamp, path).
		WithField("path", path).
		WithField("timestamp", timestamp)
}

// Encode creates an encode failure.
func Encode(output string, err error) *Error {
	return Wrapf(err, CodeEncode, "encode", "cannot encode %s", output).WithField("output", output)
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetFields extracts fields from an error.
func GetFields(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) && e.Fields != nil {
		return e.Fields
	}
	return nil
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsValidation reports whether err was raised before any media work began:
// bad arguments, unknown easing names and missing clips.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case CodeValidation, CodeUnknownEasing, CodeMissingClip:
		return err != nil
	}
	return false
}

// As is a convenience wrapper for errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a convenience wrapper for errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join is a convenience wrapper for errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
