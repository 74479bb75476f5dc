package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	plain := Input("unknown layer: roads")
	assert.Equal(t, "[INPUT_ERROR] unknown layer: roads", plain.Error())

	wrapped := Parsing("decode policies.json", io.ErrUnexpectedEOF)
	assert.Equal(t, "[PARSING_ERROR] decode policies.json: unexpected EOF", wrapped.Error())
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestIsTypeFollowsWrapChain(t *testing.T) {
	err := fmt.Errorf("serve: %w", NotFound("region", "Atlantis"))

	assert.True(t, IsType(err, TypeNotFound))
	assert.False(t, IsType(err, TypeInput))
	assert.False(t, IsType(io.EOF, TypeNotFound))
}

func TestWithContext(t *testing.T) {
	err := Load("read dataset", io.EOF).WithContext("file", "fdi.json")
	assert.Equal(t, "fdi.json", err.Context["file"])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeNotFound, TypeOf(fmt.Errorf("lookup: %w", NotFound("region", "Atlantis"))))
	assert.Equal(t, TypeInternal, TypeOf(io.EOF))
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("decode: %w", Wrap(TypeTooLarge, "request body too large", io.ErrShortBuffer))

	var e *Error
	assert.True(t, As(err, &e))
	assert.Equal(t, TypeTooLarge, e.Type)
	assert.False(t, As(io.EOF, &e))
}
