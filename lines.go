package notify

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"net"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// StripLine removes surrounding whitespace (including the line terminator
// and the ASCII separators 0x1c-0x1f). It returns false if nothing is left.
func StripLine(s string) (string, bool) {
	s = strings.TrimFunc(s, isStripped)
	return s, s != ""
}

func isStripped(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// ReadLines reads lines from r and calls fn with each raw line, terminator
// included. A line ends at "\n", "\r\n" or a lone "\r". No maximum line
// length is enforced.
//
// A final line that is not terminated before EOF is passed to fn unless
// dropPartial is set. A clean EOF returns nil. A line that is not valid UTF-8
// stops reading with ErrInvalidEncoding.
func ReadLines(r io.Reader, dropPartial bool, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), math.MaxInt)
	sc.Split(scanLines)

	var partial string
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasSuffix(line, "\n") && !strings.HasSuffix(line, "\r") {
			// Only the last token can be unterminated.
			partial = line
			continue
		}
		if err := emitLine(line, fn); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if partial == "" || dropPartial {
		return nil
	}
	return emitLine(partial, fn)
}

func emitLine(line string, fn func(line string) error) error {
	if !utf8.ValidString(line) {
		return ErrInvalidEncoding
	}
	return fn(line)
}

// scanLines is a bufio.SplitFunc that keeps the terminator and treats "\n",
// "\r\n" and "\r" alike.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		switch {
		case data[i] == '\n':
			return i + 1, data[:i+1], nil
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i+2], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i+1], nil
		}
		// A trailing "\r" may be the first half of "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// idleConn refreshes the read deadline before every read so that a peer
// which goes quiet for longer than timeout is disconnected.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
