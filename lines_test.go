package notify

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripLine(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"hello\n", "hello", true},
		{"  hello world \r\n", "hello world", true},
		{"\t\n", "", false},
		{"", "", false},
		{"\x1c\x1d x \x1e\x1f", "x", true},
		{"\x1f\r\n", "", false},
		{"　wide　", "wide", true},
		{" x ", "x", true},
	}
	for _, tc := range cases {
		got, ok := StripLine(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
	}
}

func TestReadLines(t *testing.T) {
	collect := func(r io.Reader, dropPartial bool) ([]string, error) {
		var lines []string
		err := ReadLines(r, dropPartial, func(line string) error {
			lines = append(lines, line)
			return nil
		})
		return lines, err
	}

	t.Run("terminated", func(t *testing.T) {
		lines, err := collect(strings.NewReader("a\nb\n\n"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"a\n", "b\n", "\n"}, lines)
	})

	t.Run("one byte at a time", func(t *testing.T) {
		lines, err := collect(iotest.OneByteReader(strings.NewReader("abc\ndef\n")), false)
		require.NoError(t, err)
		require.Equal(t, []string{"abc\n", "def\n"}, lines)
	})

	t.Run("carriage returns", func(t *testing.T) {
		lines, err := collect(strings.NewReader("a\rb\r\nc\n\r"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"a\r", "b\r\n", "c\n", "\r"}, lines)
	})

	t.Run("crlf split across reads", func(t *testing.T) {
		lines, err := collect(iotest.OneByteReader(strings.NewReader("a\r\nb\rc\n")), false)
		require.NoError(t, err)
		require.Equal(t, []string{"a\r\n", "b\r", "c\n"}, lines)
	})

	t.Run("trailing carriage return is a terminator", func(t *testing.T) {
		lines, err := collect(strings.NewReader("a\nb\r"), true)
		require.NoError(t, err)
		require.Equal(t, []string{"a\n", "b\r"}, lines)
	})

	t.Run("partial kept", func(t *testing.T) {
		lines, err := collect(strings.NewReader("a\nrest"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"a\n", "rest"}, lines)
	})

	t.Run("partial dropped", func(t *testing.T) {
		lines, err := collect(strings.NewReader("a\nrest"), true)
		require.NoError(t, err)
		require.Equal(t, []string{"a\n"}, lines)
	})

	t.Run("long line", func(t *testing.T) {
		long := strings.Repeat("x", 1<<20)
		lines, err := collect(strings.NewReader(long+"\n"), false)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		require.Len(t, lines[0], len(long)+1)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		lines, err := collect(strings.NewReader("ok\n\xc3\x28\nnever\n"), false)
		require.True(t, errors.Is(err, ErrInvalidEncoding))
		require.Equal(t, []string{"ok\n"}, lines)
	})

	t.Run("read error", func(t *testing.T) {
		errRead := errors.New("reset")
		r := io.MultiReader(strings.NewReader("ok\npart"), iotest.ErrReader(errRead))
		lines, err := collect(r, false)
		require.True(t, errors.Is(err, errRead))
		require.Equal(t, []string{"ok\n"}, lines)
	})

	t.Run("callback error stops reading", func(t *testing.T) {
		errStop := errors.New("stop")
		var n int
		err := ReadLines(strings.NewReader("a\nb\nc\n"), false, func(string) error {
			n++
			return errStop
		})
		require.True(t, errors.Is(err, errStop))
		require.Equal(t, 1, n)
	})
}
