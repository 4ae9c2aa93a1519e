package notefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeSegment(t *testing.T) {
	assert.Equal(t, "hello world.md", DecodeSegment("hello%20world.md"))
	assert.Equal(t, "café.txt", DecodeSegment("caf%C3%A9.txt"))
	assert.Equal(t, "plain", DecodeSegment("plain"))
}

func TestDecodeSegmentNeverFails(t *testing.T) {
	// %zz is not a valid escape; it must be passed through literally rather
	// than producing an error.
	assert.Equal(t, "100%zz", DecodeSegment("100%zz"))
	// %ff alone is a lone invalid UTF-8 byte once decoded; it must be
	// replaced, not rejected.
	assert.Contains(t, DecodeSegment("%ff"), "�")
}

func TestParseNoteName(t *testing.T) {
	title, syntax, ok := ParseNoteName("hello.md")
	assert.True(t, ok)
	assert.Equal(t, "hello", title)
	assert.Equal(t, "md", syntax)

	_, _, ok = ParseNoteName("noext")
	assert.False(t, ok)

	_, _, ok = ParseNoteName(".hidden")
	assert.False(t, ok, "leading dot is a hidden-file candidate, never a note name")

	_, _, ok = ParseNoteName("trailing.")
	assert.False(t, ok)

	title, syntax, ok = ParseNoteName("archive.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "archive.tar", title)
	assert.Equal(t, "gz", syntax)
}

func TestRenderNoteName(t *testing.T) {
	assert.Equal(t, "hello.md", RenderNoteName("hello", "md"))
}
