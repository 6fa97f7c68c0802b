// Package svcerr defines the structured error taxonomy shared across
// clipreel's pipeline stages, mirroring the marker/kind/stage scheme used
// throughout spindle's internal/services package.
package svcerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrEmbedding     = errors.New("embedding error")
	ErrTransient     = errors.New("transient failure")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Kind captures the taxonomy spec.md §7 assigns to pipeline failures.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindEmbedding     Kind = "embedding"
	KindTransient     Kind = "transient"
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
)

// Error carries stage/operation context alongside the underlying cause so
// callers can log structured fields and decide on fallback behavior without
// string-matching error messages.
type Error struct {
	Marker    error
	Kind      Kind
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", detail, e.Cause)
	}
	return detail
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	if e.Marker != nil && errors.Is(e.Marker, target) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// Wrap builds a *Error tagged with marker, stage and operation context.
func Wrap(marker error, stage, operation, message string, cause error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Kind:      classify(marker),
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     cause,
	}
}

// Details extracts structured fields from err, synthesizing a transient
// classification for errors that never passed through Wrap.
func Details(err error) (kind Kind, stage, operation, message string, cause error) {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr != nil {
		return svcErr.Kind, svcErr.Stage, svcErr.Operation, svcErr.Message, svcErr.Cause
	}
	if err == nil {
		return KindTransient, "", "", "", nil
	}
	return KindTransient, "", "", err.Error(), err
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

func classify(marker error) Kind {
	switch {
	case errors.Is(marker, ErrValidation):
		return KindValidation
	case errors.Is(marker, ErrEmbedding):
		return KindEmbedding
	case errors.Is(marker, ErrConfiguration):
		return KindConfiguration
	case errors.Is(marker, ErrNotFound):
		return KindNotFound
	default:
		return KindTransient
	}
}
