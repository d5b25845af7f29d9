package errmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Code classifies high-level error categories for user-facing messages.
type Code string

const (
	CodeCanceled          Code = "canceled"
	CodeAssetMalformed    Code = "asset_malformed"
	CodeMacroUnresolved   Code = "macro_unresolved"
	CodeIO                Code = "io_error"
	CodeExpressionSyntax  Code = "expression_syntax"
	CodeExpressionRuntime Code = "expression_runtime"
	CodeCompileFailed     Code = "compile_failed"
	CodeUnexpected        Code = "unexpected"
)

// Error is a small wrapper that carries a code and context while preserving
// the original cause via Unwrap. Path and Node annotate where the failure
// happened: the asset document on disk and the graph node involved.
type Error struct {
	Code    Code
	Message string
	Path    string
	Node    string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = humanize(e.Code, e.cause)
	}
	if e.Path != "" && e.Node != "" {
		return fmt.Sprintf("%s: node %s: %s", e.Path, e.Node, msg)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Node != "" {
		return fmt.Sprintf("node %s: %s", e.Node, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func humanize(code Code, cause error) string {
	switch code {
	case CodeCanceled:
		return "operation was canceled"
	case CodeAssetMalformed:
		if cause != nil {
			return fmt.Sprintf("blueprint document is malformed: %s", cause.Error())
		}
		return "blueprint document is malformed"
	case CodeMacroUnresolved:
		return "macro reference does not resolve to a local or library macro"
	case CodeIO:
		return "I/O error"
	case CodeExpressionSyntax:
		if cause != nil {
			return fmt.Sprintf("expression syntax error: %s", cause.Error())
		}
		return "expression syntax error"
	case CodeExpressionRuntime:
		if cause != nil {
			return fmt.Sprintf("expression evaluation error: %s", cause.Error())
		}
		return "expression evaluation error"
	case CodeCompileFailed:
		if cause != nil {
			return fmt.Sprintf("blueprint compilation failed: %s", cause.Error())
		}
		return "blueprint compilation failed"
	default:
		if cause != nil {
			return cause.Error()
		}
		return "unexpected error"
	}
}

// Map converts an arbitrary error into an *Error with a best-effort code.
// It keeps the original error as the cause.
func Map(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err // already mapped
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeCanceled, cause: err}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &Error{Code: CodeAssetMalformed, cause: err}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &Error{Code: CodeAssetMalformed, cause: err}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &Error{Code: CodeIO, Path: pathErr.Path, cause: err}
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return &Error{Code: CodeIO, cause: err}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "unexpected end of json"), strings.Contains(lower, "invalid character"):
		return &Error{Code: CodeAssetMalformed, cause: err}
	case strings.Contains(lower, "no such file"), strings.Contains(lower, "permission denied"):
		return &Error{Code: CodeIO, cause: err}
	}

	return &Error{Code: CodeUnexpected, cause: err}
}

// New constructs an Error with the supplied code, message, and cause.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// MapAssetError annotates the mapped error with the asset path.
func MapAssetError(path string, err error) error {
	if err == nil {
		return nil
	}
	m := Map(err)
	var me *Error
	if errors.As(m, &me) {
		me.Path = path
		return me
	}
	return m
}

// CodeOf extracts the classification code, defaulting to unexpected for
// errors that were never mapped.
func CodeOf(err error) Code {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return CodeUnexpected
}
