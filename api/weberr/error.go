package weberr

import (
	"net/http"

	"github.com/irsalhamdi/course-platform/core/errs"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

func Forbidden(err error, opts ...Opt) error {
	return NewError(
		err,
		"not allowed to modify resource",
		http.StatusForbidden,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		"bad request",
		http.StatusBadRequest,
		opts...,
	)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"rate limit exceeded",
		http.StatusTooManyRequests,
		opts...,
	)
}

// FromDomain maps the failure kinds of the rules services to responses.
// Errors without a kind are returned unchanged and end up as a 500.
func FromDomain(err error) error {
	kind, ok := errs.KindOf(err)
	if !ok {
		return err
	}

	fields := WithFields(map[string]interface{}{"kind": kind.String()})

	switch kind {
	case errs.KindNotFound:
		return NotFound(err, fields)
	case errs.KindForbidden:
		return Forbidden(err, fields)
	case errs.KindConflict:
		return NewError(err, errs.Message(err), http.StatusConflict, fields)
	case errs.KindBusinessRule, errs.KindValidation:
		return NewError(err, errs.Message(err), http.StatusBadRequest, fields)
	}
	return err
}
