package headers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleHeader(t *testing.T) {
	h := New()

	n, done, err := h.Parse([]byte("Host: localhost:42069\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	assert.False(t, done)

	value, ok := h.Get("Host")
	require.True(t, ok)
	assert.Equal(t, "localhost:42069", value)
}

func TestParseIncompleteLine(t *testing.T) {
	h := New()

	n, done, err := h.Parse([]byte("Host: localhost"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, done)
	assert.Zero(t, h.Len())
}

func TestParseEndOfBlock(t *testing.T) {
	tests := []struct {
		name string
		data string
		n    int
	}{
		{name: "crlf", data: "\r\nGET", n: 2},
		{name: "bare lf", data: "\nGET", n: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			n, done, err := h.Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.n, n)
			assert.True(t, done)
		})
	}
}

func TestParseMalformedHeaders(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing colon", data: "Host localhost\r\n"},
		{name: "space before colon", data: "Host : localhost\r\n"},
		{name: "empty name", data: ": localhost\r\n"},
		{name: "invalid character in name", data: "H@st: localhost\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			n, done, err := h.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Zero(t, n)
			assert.False(t, done)
		})
	}
}

func TestParseKeepsDuplicatesInOrder(t *testing.T) {
	h := New()
	for _, line := range []string{"Set-Person: lane\r\n", "Set-Person: prime\r\n"} {
		_, _, err := h.Parse([]byte(line))
		require.NoError(t, err)
	}

	require.Equal(t, 2, h.Len())
	assert.Equal(t, []Field{
		{Name: "Set-Person", Value: "lane"},
		{Name: "Set-Person", Value: "prime"},
	}, h.All())

	// Lookup is case-insensitive and returns the first entry.
	value, ok := h.Get("set-person")
	require.True(t, ok)
	assert.Equal(t, "lane", value)
}

func TestParseLineTooLong(t *testing.T) {
	big := "X-Big: " + strings.Repeat("a", MaxLineBytes)

	t.Run("terminated", func(t *testing.T) {
		h := New()
		_, _, err := h.Parse([]byte(big + "\r\n"))
		assert.ErrorIs(t, err, ErrLineTooLong)
	})

	t.Run("unterminated", func(t *testing.T) {
		h := New()
		_, _, err := h.Parse([]byte(big))
		assert.ErrorIs(t, err, ErrLineTooLong)
	})
}

func TestParseLineLengthBoundary(t *testing.T) {
	// The bound applies to raw line bytes including CRLF, so the largest
	// accepted line occupies exactly MaxLineBytes on the wire.
	name := "X-Big: "
	fill := MaxLineBytes - len(name) - len("\r\n")

	t.Run("at the limit", func(t *testing.T) {
		h := New()
		n, done, err := h.Parse([]byte(name + strings.Repeat("a", fill) + "\r\n"))
		require.NoError(t, err)
		assert.Equal(t, MaxLineBytes, n)
		assert.False(t, done)
	})

	t.Run("one byte over", func(t *testing.T) {
		h := New()
		_, _, err := h.Parse([]byte(name + strings.Repeat("a", fill+1) + "\r\n"))
		assert.ErrorIs(t, err, ErrLineTooLong)
	})
}

func TestSetReplacesFirstMatch(t *testing.T) {
	h := New()
	h.Add("Content-Type", "text/plain")
	h.Set("content-type", "application/json")

	value, ok := h.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/json", value)
	assert.Equal(t, 1, h.Len())
}
