package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/skycoin/skycoin/src/util/logging"

	"github.com/skycoin/notify/servermetrics"
)

// Server accepts connections one at a time and prints the lines each one sends.
type Server struct {
	conf Config
	out  io.Writer
	log  logrus.FieldLogger
	m    servermetrics.Metrics
}

// NewServer creates a Server. A nil conf uses DefaultConfig and nil m disables metrics.
func NewServer(conf *Config, m servermetrics.Metrics) *Server {
	if conf == nil {
		conf = DefaultConfig()
	}
	if m == nil {
		m = servermetrics.NewEmpty()
	}
	s := &Server{
		conf: *conf,
		out:  os.Stdout,
		log:  logging.MustGetLogger("notify_server"),
		m:    m,
	}
	s.conf.ensureDefaults()
	return s
}

// SetLogger sets the logger used for diagnostics.
func (s *Server) SetLogger(log logrus.FieldLogger) {
	s.log = log
}

// SetOutput sets where the ready message, accepted peers and events are printed.
func (s *Server) SetOutput(w io.Writer) {
	s.out = w
}

// ListenAndServe binds the configured address and serves on it until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := Listen(&s.conf)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve prints the ready message and serves connections from lis sequentially.
// Serve takes ownership of lis and closes it when it returns.
// It returns nil once ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		if err := lis.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.WithError(err).Warn("Failed to close listener.")
		}
	}()

	s.printf("listening on %s ...\n", lis.Addr())
	s.log.WithField("local_addr", lis.Addr()).Info("Serving notify listener.")
	defer s.log.WithField("local_addr", lis.Addr()).Info("Stopped notify listener.")

	for {
		conn, err := lis.Accept()
		if err != nil {
			// If context is cancelled, there is no error to report.
			if isDone(ctx) {
				return nil
			}
			if isTemporary(err) {
				s.log.WithError(err).Warn("Temporary accept failure.")
				if !sleepCtx(ctx, acceptRetryDelay) {
					return nil
				}
				continue
			}
			return err
		}
		s.serveConn(ctx, conn)
	}
}

// serveConn reads events from conn until the peer closes it, a read fails, or ctx is done.
// Errors are confined to conn.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Started first: RemoteAddr of a PROXY protocol conn blocks on the header.
	go func() {
		<-ctx.Done()
		_ = conn.Close() //nolint:errcheck
	}()

	log := s.log.WithField("remote_addr", conn.RemoteAddr())

	s.printf("accepted from %s\n", conn.RemoteAddr())
	s.m.RecordConn(servermetrics.DeltaConnect)
	defer s.m.RecordConn(servermetrics.DeltaDisconnect)

	var r io.Reader = conn
	if s.conf.ReadTimeout > 0 {
		r = &idleConn{Conn: conn, timeout: s.conf.ReadTimeout}
	}

	var events int
	err := ReadLines(r, s.conf.DropPartial, func(raw string) error {
		line, ok := StripLine(raw)
		if !ok {
			s.m.RecordBlank()
			return nil
		}
		events++
		s.handleEvent(log, Event{Line: line, Remote: conn.RemoteAddr()})
		return nil
	})

	log = log.WithField("events", events)
	switch {
	case err == nil:
		log.Debug("Connection closed by peer.")
	case isDone(ctx):
		log.Debug("Connection closed on shutdown.")
	default:
		s.m.RecordConn(servermetrics.DeltaFailed)
		log.WithError(err).Warn("Connection ended with error.")
	}
}

func (s *Server) handleEvent(log logrus.FieldLogger, e Event) {
	if evt, err := ParseDeviceEvent(e.Line); err == nil {
		s.m.RecordEvent(string(evt.Kind))
		log.WithField("kind", evt.Kind).
			WithField("device_type", evt.Device.Type).
			WithField("device_uid", evt.Device.UID).
			WithField("ts", evt.Timestamp).
			Debug("Received device event.")
	} else {
		if errors.Is(err, ErrUnknownKind) {
			log.WithError(err).Debug("Ignoring device event fields.")
		}
		s.m.RecordEvent("")
	}

	s.printf("%s %s\n", s.conf.Label, e.Line)
}

func (s *Server) printf(format string, v ...interface{}) {
	if _, err := fmt.Fprintf(s.out, format, v...); err != nil {
		s.log.WithError(err).Error("Failed to write output.")
	}
}
