package content

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("content not found")
	ErrTransport = errors.New("content transport failure")
)

/*
RequestError describes a failed call to the content source. Kind is
either ErrNotFound or ErrTransport, so callers can use errors.Is
without caring about the details.
*/
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Kind       error
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Kind)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.URL, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Kind)
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
