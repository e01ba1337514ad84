package apperror

import "errors"

// Kind describes a stable error category that can be mapped to HTTP status codes.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindComputation   Kind = "computation"
)

// Public reports whether messages of this kind may be shown to API clients.
// Configuration and upstream failures carry provider or infrastructure details and stay internal.
func (k Kind) Public() bool {
	switch k {
	case KindNotFound, KindValidation, KindConflict, KindComputation:
		return true
	default:
		return false
	}
}

// Error is a typed error with a stable Kind and a human-readable message.
// Msg should be safe to return to clients for Validation/NotFound/Conflict/Computation.
// Fields carries per-field validation messages.
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Fields map[string][]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string, err error) error      { return New(KindNotFound, msg, err) }
func Validation(msg string, err error) error    { return New(KindValidation, msg, err) }
func Conflict(msg string, err error) error      { return New(KindConflict, msg, err) }
func Configuration(msg string, err error) error { return New(KindConfiguration, msg, err) }
func Upstream(msg string, err error) error      { return New(KindUpstream, msg, err) }
func Computation(msg string, err error) error   { return New(KindComputation, msg, err) }

// ValidationFields builds a validation error with per-field messages.
func ValidationFields(msg string, fields map[string][]string) error {
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldsOf returns field-level messages carried by err, if any.
func FieldsOf(err error) map[string][]string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	return e.Fields
}
