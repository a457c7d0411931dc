package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/skycoin/notify/servermetrics"
)

const (
	smallDelay  = 100 * time.Millisecond
	testTimeout = 5 * time.Second
)

// syncBuffer is a bytes.Buffer that may be written by the server while the test reads it.
type syncBuffer struct {
	mx  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Lines() []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// waitFor blocks until the output contains substr.
func (b *syncBuffer) waitFor(t *testing.T, substr string) {
	require.Eventually(t, func() bool {
		return strings.Contains(b.String(), substr)
	}, testTimeout, 10*time.Millisecond, "output never contained %q, got:\n%s", substr, b.String())
}

type countingMetrics struct {
	mx     sync.Mutex
	conns  map[int]int
	events map[string]int
	blanks int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		conns:  make(map[int]int),
		events: make(map[string]int),
	}
}

func (m *countingMetrics) RecordConn(delta servermetrics.DeltaType) {
	m.mx.Lock()
	m.conns[int(delta)]++
	m.mx.Unlock()
}

func (m *countingMetrics) RecordEvent(kind string) {
	m.mx.Lock()
	m.events[kind]++
	m.mx.Unlock()
}

func (m *countingMetrics) RecordBlank() {
	m.mx.Lock()
	m.blanks++
	m.mx.Unlock()
}

func (m *countingMetrics) snapshot() (conns map[int]int, events map[string]int, blanks int) {
	m.mx.Lock()
	defer m.mx.Unlock()

	conns = make(map[int]int, len(m.conns))
	for k, v := range m.conns {
		conns[k] = v
	}
	events = make(map[string]int, len(m.events))
	for k, v := range m.events {
		events[k] = v
	}
	return conns, events, m.blanks
}

type testServer struct {
	addr  string
	out   *syncBuffer
	errCh chan error
	stop  context.CancelFunc
}

// startServer serves a Server on a local listener until the test ends.
func startServer(t *testing.T, conf *Config, m *countingMetrics) *testServer {
	lis, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	var srv *Server
	if m != nil {
		srv = NewServer(conf, m)
	} else {
		srv = NewServer(conf, nil)
	}
	out := new(syncBuffer)
	srv.SetOutput(out)

	ctx, cancel := context.WithCancel(context.Background())
	ts := &testServer{
		addr:  lis.Addr().String(),
		out:   out,
		errCh: make(chan error, 1),
		stop:  cancel,
	}
	go func() {
		ts.errCh <- srv.Serve(ctx, lis)
		close(ts.errCh)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-ts.errCh:
			require.NoError(t, err)
		case <-time.After(testTimeout):
			t.Error("server did not stop in time")
		}
	})

	out.waitFor(t, "listening on "+ts.addr+" ...")
	return ts
}

func dial(t *testing.T, addr string) net.Conn {
	conn, err := net.DialTimeout("tcp", addr, testTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() }) //nolint:errcheck
	return conn
}

// send dials addr, writes data and closes the connection.
func send(t *testing.T, addr, data string) net.Conn {
	conn := dial(t, addr)
	_, err := conn.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	return conn
}

// waitClosed blocks until the server closes conn.
func waitClosed(t *testing.T, conn net.Conn) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))
	_, err := io.Copy(io.Discard, conn)
	if err != nil {
		var netErr net.Error
		require.False(t, errors.As(err, &netErr) && netErr.Timeout(), "connection was not closed by the server")
	}
}
