package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/skycoin/notify"
)

type lockedBuffer struct {
	mx  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.String()
}

func startServer(t *testing.T) *lockedBuffer {
	lis, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	out := new(lockedBuffer)
	srv := notify.NewServer(nil, nil)
	srv.SetOutput(out)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errCh)
	})

	addr = lis.Addr().String()
	return out
}

func waitFor(t *testing.T, out *lockedBuffer, substr string) {
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), substr)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPush(t *testing.T) {
	log := logrus.New()

	t.Run("stdin", func(t *testing.T) {
		out := startServer(t)
		require.NoError(t, push(context.Background(), log, strings.NewReader("first\n\n  second  \nthird"), nil, nil))
		waitFor(t, out, "event: third")
		require.Contains(t, out.String(), "event: first\n")
		require.Contains(t, out.String(), "event: second\n")
	})

	t.Run("args", func(t *testing.T) {
		out := startServer(t)
		require.NoError(t, push(context.Background(), log, nil, []string{"one", " ", "two"}, nil))
		waitFor(t, out, "event: two")
		require.Equal(t, 2, strings.Count(out.String(), "event: "))
	})

	t.Run("device", func(t *testing.T) {
		out := startServer(t)
		evt := &notify.DeviceEvent{
			Kind:   notify.KindAttach,
			Device: notify.DeviceInfo{Type: notify.DeviceIOS, UID: "00008101-001"},
		}
		require.NoError(t, push(context.Background(), log, nil, nil, evt))
		waitFor(t, out, `"uid":"00008101-001"`)
	})

	t.Run("undelivered", func(t *testing.T) {
		lis, err := nettest.NewLocalListener("tcp")
		require.NoError(t, err)
		addr = lis.Addr().String()
		require.NoError(t, lis.Close())

		err = push(context.Background(), log, strings.NewReader("a\nb\n"), nil, nil)
		require.True(t, errors.Is(err, ErrUndelivered), "got %v", err)
	})

	t.Run("webhook", func(t *testing.T) {
		var (
			mx     sync.Mutex
			bodies []string
		)
		hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mx.Lock()
			bodies = append(bodies, string(body))
			mx.Unlock()
		}))
		defer hook.Close()

		addr, webhook = "", hook.URL
		defer func() { webhook = "" }()

		require.NoError(t, push(context.Background(), log, nil, []string{"one", "two"}, nil))
		mx.Lock()
		defer mx.Unlock()
		require.Equal(t, []string{"one", "two"}, bodies)
	})

	t.Run("no sink", func(t *testing.T) {
		addr = ""
		err := push(context.Background(), log, nil, []string{"one"}, nil)
		require.True(t, errors.Is(err, ErrNoSink), "got %v", err)
	})
}
