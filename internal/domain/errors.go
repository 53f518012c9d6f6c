// Package domain provides shared domain-level errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a caller-supplied request failed validation.
var ErrValidation = errors.New("validation error")

// ErrorKind classifies a planning failure. The HTTP and MCP layers use it to
// render a status; the planner itself treats every kind as terminal.
type ErrorKind string

const (
	KindTemplateNotFound          ErrorKind = "template_not_found"
	KindTemplateRenderError       ErrorKind = "template_render_error"
	KindModelUnavailable          ErrorKind = "model_unavailable"
	KindModelEmptyResponse        ErrorKind = "model_empty_response"
	KindMalformedJSON             ErrorKind = "malformed_json"
	KindUnrecognizedResponseShape ErrorKind = "unrecognized_response_shape"
	KindSchemaValidation          ErrorKind = "schema_validation_error"
)

// Sentinels for errors.Is matching. A *Error of the same kind matches them.
var (
	ErrTemplateNotFound          = &Error{Kind: KindTemplateNotFound, Index: -1}
	ErrTemplateRender            = &Error{Kind: KindTemplateRenderError, Index: -1}
	ErrModelUnavailable          = &Error{Kind: KindModelUnavailable, Index: -1}
	ErrModelEmptyResponse        = &Error{Kind: KindModelEmptyResponse, Index: -1}
	ErrMalformedJSON             = &Error{Kind: KindMalformedJSON, Index: -1}
	ErrUnrecognizedResponseShape = &Error{Kind: KindUnrecognizedResponseShape, Index: -1}
	ErrSchemaValidation          = &Error{Kind: KindSchemaValidation, Index: -1}
)

// Error is a typed planning failure.
type Error struct {
	Kind    ErrorKind
	Message string

	// Field and Index locate a schema violation. Index is -1 when the
	// violation is not tied to a list element.
	Field string
	Index int

	// Value holds the offending parsed reply for shape failures.
	Value any

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Field != "" && e.Index >= 0:
		msg = fmt.Sprintf("%s: item %d: field %q", msg, e.Index, e.Field)
	case e.Field != "":
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
	case e.Index >= 0:
		msg = fmt.Sprintf("%s: item %d", msg, e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// NewTemplateNotFound reports a missing template or system prompt resource.
func NewTemplateNotFound(name string, cause error) *Error {
	return &Error{Kind: KindTemplateNotFound, Message: "template not found: " + name, Index: -1, Err: cause}
}

// NewTemplateRenderError reports a template that could not be executed,
// typically because a required binding is absent.
func NewTemplateRenderError(name string, cause error) *Error {
	return &Error{Kind: KindTemplateRenderError, Message: "render template " + name, Index: -1, Err: cause}
}

// NewModelUnavailable reports a transport, auth or timeout failure.
func NewModelUnavailable(cause error) *Error {
	return &Error{Kind: KindModelUnavailable, Message: "model unavailable", Index: -1, Err: cause}
}

// NewModelEmptyResponse reports a completion that carried no content.
func NewModelEmptyResponse() *Error {
	return &Error{Kind: KindModelEmptyResponse, Message: "model returned empty response", Index: -1}
}

// NewMalformedJSON reports a reply that is not parseable JSON.
func NewMalformedJSON(cause error) *Error {
	return &Error{Kind: KindMalformedJSON, Message: "malformed JSON in model reply", Index: -1, Err: cause}
}

// NewUnrecognizedResponseShape reports a reply matching none of the accepted shapes.
func NewUnrecognizedResponseShape(value any) *Error {
	return &Error{
		Kind:    KindUnrecognizedResponseShape,
		Message: fmt.Sprintf("unexpected response: %v", value),
		Index:   -1,
		Value:   value,
	}
}

// NewSchemaValidation reports a field or length violation. Pass index -1
// for violations of the list itself.
func NewSchemaValidation(field string, index int, message string) *Error {
	return &Error{Kind: KindSchemaValidation, Message: message, Field: field, Index: index}
}
