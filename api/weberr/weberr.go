// Package weberr decorates errors with the response a client should see.
// Handlers return decorated errors and the error middleware renders them.
package weberr

import "errors"

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// WithFields attaches log fields to err.
func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

type responder interface {
	Response() (body interface{}, status int)
}

func Response(err error) (body interface{}, status int, ok bool) {
	var re responder
	if errors.As(err, &re) {
		body, code := re.Response()
		return body, code, true
	}
	return nil, 0, false
}

type fielder interface {
	Fields() map[string]interface{}
}

// Fields merges the log fields attached anywhere in err's chain, outer
// values winning.
func Fields(err error) (map[string]interface{}, bool) {
	var (
		merged map[string]interface{}
		fe     *fieldsError
	)

	for errors.As(err, &fe) {
		if merged == nil {
			merged = make(map[string]interface{})
		}
		for k, v := range fe.fields {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
		err = fe.error
	}
	return merged, merged != nil
}

type responseError struct {
	error
	body   interface{}
	status int
}

func (e *responseError) Response() (interface{}, int) { return e.body, e.status }

func (e *responseError) Unwrap() error { return e.error }

type fieldsError struct {
	error
	fields map[string]interface{}
}

func (e *fieldsError) Fields() map[string]interface{} { return e.fields }

func (e *fieldsError) Unwrap() error { return e.error }
