package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes a registered error code.
type Coder interface {
	// HTTPStatus is the status code written for the error.
	HTTPStatus() int
	// String is the message shown to external users.
	String() string
	// Reference points to the documentation of the code.
	Reference() string
	// Code is the numeric error code.
	Code() int
}

// UnknownCode is used for errors that carry no registered code.
const UnknownCode = 1

type defaultCoder struct {
	code int
	http int
	ext  string
	ref  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) String() string    { return c.ext }
func (c defaultCoder) Reference() string { return c.ref }

func (c defaultCoder) HTTPStatus() int {
	if c.http == 0 {
		return http.StatusInternalServerError
	}
	return c.http
}

var unknownCoder = defaultCoder{
	code: UnknownCode,
	http: http.StatusInternalServerError,
	ext:  "An internal server error occurred",
}

var (
	codeMu sync.RWMutex
	codes  = map[int]Coder{}
)

// Register registers a coder, replacing any coder with the same code.
func Register(coder Coder) error {
	if coder.Code() == UnknownCode {
		return fmt.Errorf("code %d is reserved for unknown errors", UnknownCode)
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	codes[coder.Code()] = coder
	return nil
}

// MustRegister registers a coder and panics if the code is already taken.
func MustRegister(coder Coder) {
	if coder.Code() == UnknownCode {
		panic(fmt.Sprintf("code %d is reserved for unknown errors", UnknownCode))
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		panic(fmt.Sprintf("code %d already registered", coder.Code()))
	}
	codes[coder.Code()] = coder
}

// ParseCoder returns the coder of the outermost coded error in err's chain,
// or the unknown coder.
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	if wc, ok := asWithCode(err); ok {
		codeMu.RLock()
		defer codeMu.RUnlock()
		if coder, ok := codes[wc.code]; ok {
			return coder
		}
	}
	return unknownCoder
}

// IsCode reports whether any error in err's chain carries code.
func IsCode(err error, code int) bool {
	for err != nil {
		if wc, ok := err.(*withCode); ok {
			if wc.code == code {
				return true
			}
			err = wc.cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
