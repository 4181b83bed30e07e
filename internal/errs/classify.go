package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable error category shown to the UI.
type Code string

const (
	CodeNetwork    Code = "NETWORK"
	CodeTimeout    Code = "TIMEOUT"
	CodeAPI        Code = "API"
	CodeAuth       Code = "AUTH"
	CodePermission Code = "PERMISSION"
	CodeValidation Code = "VALIDATION"
	CodeSync       Code = "SYNC"
	CodeResource   Code = "RESOURCE"
	CodeUnknown    Code = "UNKNOWN"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
)

var messages = map[Code]string{
	CodeNetwork:    "Please check your internet connection and try again.",
	CodeTimeout:    "The request took too long. Please try again.",
	CodeAPI:        "Something went wrong on our end. Please try again later.",
	CodeAuth:       "Please sign in again to continue.",
	CodePermission: "Permission is required to complete this action.",
	CodeValidation: "Please check your input and try again.",
	CodeSync:       "Your data could not be saved. Please try again.",
	CodeResource:   "The requested item could not be found.",
	CodeUnknown:    "An unexpected error occurred. Please try again.",
	CodeNotFound:   "This item no longer exists.",
	CodeConflict:   "A session is already in progress.",
}

// Message returns the fixed user-facing text for c.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[CodeUnknown]
}

// Severity decides how the UI surfaces a failure.
type Severity string

const (
	SeverityToast Severity = "toast"
	SeverityFatal Severity = "fatal"
)

// Severity returns toast for recoverable categories and fatal otherwise.
func (c Code) Severity() Severity {
	switch c {
	case CodeNotFound, CodeConflict, CodeValidation, CodeNetwork, CodeTimeout, CodeSync:
		return SeverityToast
	default:
		return SeverityFatal
	}
}

// Classified is the result of Classify.
type Classified struct {
	Code    Code
	Message string
}

// markers are checked in order; the first match wins.
var markers = []struct {
	code  Code
	terms []string
}{
	{CodeNetwork, []string{"network", "offline", "connection"}},
	{CodeTimeout, []string{"timeout"}},
	{CodeAPI, []string{"api", "server"}},
	{CodeAuth, []string{"auth", "login", "unauthorized"}},
	{CodePermission, []string{"permission", "forbidden"}},
	{CodeValidation, []string{"validation", "invalid"}},
	{CodeSync, []string{"sync"}},
	{CodeResource, []string{"resource", "not found"}},
}

// Classify maps err to a code and user message. Sentinels win over text heuristics;
// anything unrecognized is UNKNOWN.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Code: CodeUnknown, Message: CodeUnknown.Message()}
	}
	var e *Error
	if errors.As(err, &e) {
		return Classified{Code: e.Code, Message: e.Message}
	}
	code := sentinelCode(err)
	if code == "" {
		code = textCode(err.Error())
	}
	return Classified{Code: code, Message: code.Message()}
}

func sentinelCode(err error) Code {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrValidation):
		return CodeValidation
	}
	return ""
}

func textCode(msg string) Code {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		for _, t := range m.terms {
			if strings.Contains(msg, t) {
				return m.code
			}
		}
	}
	return CodeUnknown
}

// Error is a classified failure returned by the stores.
type Error struct {
	Code    Code
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err and tags it with op. A nil err stays nil; an already
// classified error is returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	c := Classify(err)
	return &Error{Code: c.Code, Message: c.Message, Op: op, Err: err}
}

// Validation builds a validation error with a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Info is the error part of Result.
type Info struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result is the envelope handed to the UI bridge.
type Result struct {
	Success bool  `json:"success"`
	Error   *Info `json:"error,omitempty"`
}

// ResultOf builds the UI envelope for err.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	c := Classify(err)
	return Result{Error: &Info{Code: c.Code, Message: c.Message}}
}
