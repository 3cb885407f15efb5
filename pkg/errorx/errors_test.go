package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testCodeNotFound = 900001
	testCodeConflict = 900002
)

func init() {
	MustRegister(defaultCoder{code: testCodeNotFound, http: http.StatusNotFound, ext: "Thing not found"})
	MustRegister(defaultCoder{code: testCodeConflict, http: http.StatusConflict, ext: "Thing conflict"})
}

func TestWrapC(t *testing.T) {
	base := errors.New("boom")
	err := WrapC(base, testCodeNotFound, "get %q", "x")

	assert.EqualError(t, err, `get "x": boom`)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, testCodeNotFound, Code(err))
	assert.Nil(t, WrapC(nil, testCodeNotFound, "nothing"))
}

func TestParseCoder(t *testing.T) {
	assert.Nil(t, ParseCoder(nil))

	coder := ParseCoder(fmt.Errorf("outer: %w", WithCode(testCodeConflict, "dup")))
	assert.Equal(t, http.StatusConflict, coder.HTTPStatus())
	assert.Equal(t, "Thing conflict", coder.String())

	unknown := ParseCoder(errors.New("plain"))
	assert.Equal(t, UnknownCode, unknown.Code())
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus())

	unregistered := ParseCoder(WithCode(123456, "x"))
	assert.Equal(t, UnknownCode, unregistered.Code())
}

func TestIsCode(t *testing.T) {
	inner := WithCode(testCodeNotFound, "inner")
	err := WrapC(inner, testCodeConflict, "outer")

	assert.True(t, IsCode(err, testCodeConflict))
	assert.True(t, IsCode(err, testCodeNotFound))
	assert.False(t, IsCode(err, 42))
}

func TestMustRegister_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		MustRegister(defaultCoder{code: testCodeNotFound})
	})
	assert.Panics(t, func() {
		MustRegister(defaultCoder{code: UnknownCode})
	})
}
