// internal/api/envelope.go
package api

import (
	"net/url"

	"github.com/oklog/ulid/v2"
)

// Envelope is the bookkeeping wrapper around one outbound call. The retried
// flag transitions false to true at most once: a request that has already
// been re-issued after a refresh must never trigger a second refresh.
type Envelope struct {
	ID     string
	Method string
	Path   string
	Query  url.Values
	Body   interface{}

	retried bool
}

func NewEnvelope(method, path string) *Envelope {
	return &Envelope{
		ID:     ulid.Make().String(),
		Method: method,
		Path:   path,
	}
}

// WithBody sets the JSON body.
func (e *Envelope) WithBody(body interface{}) *Envelope {
	e.Body = body
	return e
}

// WithQuery adds a query parameter.
func (e *Envelope) WithQuery(key, value string) *Envelope {
	if e.Query == nil {
		e.Query = url.Values{}
	}
	e.Query.Set(key, value)
	return e
}

// markRetried flips the retry flag. Returns false if the envelope had
// already been retried, in which case the caller must not refresh again.
func (e *Envelope) markRetried() bool {
	if e.retried {
		return false
	}
	e.retried = true
	return true
}
