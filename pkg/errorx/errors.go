// Package errorx attaches registered numeric codes to errors so transport
// layers can map them to status codes and user-facing messages.
package errorx

import (
	"errors"
	"fmt"
)

type withCode struct {
	msg   string
	code  int
	cause error
}

// WithCode returns an error carrying code with a formatted message.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{msg: fmt.Sprintf(format, args...), code: code}
}

// WrapC wraps err with code and a formatted message. It returns nil if err
// is nil.
func WrapC(err error, code int, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withCode{msg: fmt.Sprintf(format, args...), code: code, cause: err}
}

func (w *withCode) Error() string {
	if w.cause == nil {
		return w.msg
	}
	return w.msg + ": " + w.cause.Error()
}

func (w *withCode) Unwrap() error { return w.cause }

// Code returns the outermost code in err's chain, or UnknownCode.
func Code(err error) int {
	if wc, ok := asWithCode(err); ok {
		return wc.code
	}
	return UnknownCode
}

func asWithCode(err error) (*withCode, bool) {
	var wc *withCode
	if errors.As(err, &wc) {
		return wc, true
	}
	return nil, false
}
