package notify

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skycoin/skycoin/src/util/logging"
)

// SendLine dials endpoint, writes line followed by a newline and closes the connection.
func SendLine(ctx context.Context, endpoint, line string) error {
	return sendLine(ctx, &net.Dialer{Timeout: DefaultDialTimeout}, endpoint, line)
}

func sendLine(ctx context.Context, d *net.Dialer, endpoint, line string) error {
	if host, port, err := net.SplitHostPort(endpoint); err != nil || host == "" || port == "" {
		return fmt.Errorf("%w '%s'", ErrInvalidAddr, endpoint)
	}

	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck

	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(dl); err != nil {
			return err
		}
	}
	_, err = conn.Write([]byte(strings.TrimRight(line, "\r\n") + "\n"))
	return err
}

// PostLine sends line as the JSON body of an HTTP POST to webhook.
// Any response status outside 2xx is an error.
func PostLine(ctx context.Context, client *http.Client, webhook, line string) error {
	u, err := parseWebhookURL(webhook)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(),
		strings.NewReader(strings.TrimRight(line, "\r\n")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck

	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxWebhookReply)); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrWebhookStatus, resp.Status)
	}
	return nil
}

// parseWebhookURL accepts "http(s)://host[:port]/path" or a bare "host[:port]/path".
func parseWebhookURL(webhook string) (*url.URL, error) {
	if webhook != "" && !strings.Contains(webhook, "://") {
		webhook = "http://" + webhook
	}
	u, err := url.Parse(webhook)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w '%s'", ErrInvalidWebhook, webhook)
	}
	return u, nil
}

// NotifierStats counts what a Notifier did with pushed lines.
// Sent, Failed and Dropped belong to the TCP endpoint; Dropped also counts
// lines refused by a full queue.
type NotifierStats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64

	WebhookSent    uint64
	WebhookFailed  uint64
	WebhookDropped uint64
}

// NotifierOption configures a Notifier.
type NotifierOption func(n *Notifier)

// WithBackoff sets how long a sink pauses after a failed push.
func WithBackoff(d time.Duration) NotifierOption {
	return func(n *Notifier) { n.backoff = d }
}

// WithDialTimeout sets the timeout of each push.
func WithDialTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		n.dialer.Timeout = d
		n.client.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) NotifierOption {
	return func(n *Notifier) { n.log = log }
}

// WithQueueSize sets how many lines may wait to be pushed.
func WithQueueSize(size int) NotifierOption {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan string, size)
		}
	}
}

// WithWebhook also posts every line to webhook. The webhook keeps its own
// backoff clock, so a failing webhook does not hold back the TCP endpoint.
func WithWebhook(webhook string) NotifierOption {
	return func(n *Notifier) {
		n.webhook = &sink{
			name:   "webhook",
			target: webhook,
			send: func(ctx context.Context, line string) error {
				return PostLine(ctx, n.client, webhook, line)
			},
		}
	}
}

// sink is one push destination with its own backoff clock.
// nextAllowed is only touched by the worker.
type sink struct {
	name        string
	target      string
	send        func(ctx context.Context, line string) error
	nextAllowed time.Time

	sent    uint64
	failed  uint64
	dropped uint64
}

func (s *sink) stats() (sent, failed, dropped uint64) {
	if s == nil {
		return 0, 0, 0
	}
	return atomic.LoadUint64(&s.sent), atomic.LoadUint64(&s.failed), atomic.LoadUint64(&s.dropped)
}

// Notifier pushes lines from a single worker to a TCP endpoint, one
// connection per line, and optionally to an HTTP webhook.
// After a failed push to a sink, lines are dropped for that sink until the
// backoff period has passed.
type Notifier struct {
	backoff time.Duration
	dialer  *net.Dialer
	client  *http.Client
	log     logrus.FieldLogger

	tcp     *sink // nil when no endpoint is set
	webhook *sink

	queue chan string
	done  chan struct{}
	once  sync.Once

	queueDropped uint64
}

// NewNotifier creates a Notifier that pushes to endpoint (host:port).
// An empty endpoint disables the TCP push, which is useful with WithWebhook.
func NewNotifier(endpoint string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		backoff: DefaultNotifierBackoff,
		dialer:  &net.Dialer{Timeout: DefaultDialTimeout},
		client:  &http.Client{Timeout: DefaultDialTimeout},
		log:     logging.MustGetLogger("notifier"),
		queue:   make(chan string, DefaultQueueSize),
		done:    make(chan struct{}),
	}
	if endpoint != "" {
		n.tcp = &sink{
			name:   "tcp",
			target: endpoint,
			send: func(ctx context.Context, line string) error {
				return sendLine(ctx, n.dialer, endpoint, line)
			},
		}
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Push queues a line for delivery.
func (n *Notifier) Push(line string) error {
	select {
	case <-n.done:
		return ErrNotifierClosed
	default:
	}

	select {
	case n.queue <- line:
		return nil
	case <-n.done:
		return ErrNotifierClosed
	default:
		atomic.AddUint64(&n.queueDropped, 1)
		return ErrQueueFull
	}
}

// PushContext queues a line, waiting for room in the queue until ctx is done.
func (n *Notifier) PushContext(ctx context.Context, line string) error {
	select {
	case <-n.done:
		return ErrNotifierClosed
	default:
	}

	select {
	case n.queue <- line:
		return nil
	case <-n.done:
		return ErrNotifierClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushDeviceEvent encodes evt and queues it for delivery.
func (n *Notifier) PushDeviceEvent(evt *DeviceEvent) error {
	line, err := evt.MarshalLine()
	if err != nil {
		return err
	}
	return n.Push(line)
}

// Serve delivers queued lines in order until ctx is done or the notifier is closed.
// Lines still queued when the notifier is closed are delivered before Serve returns.
func (n *Notifier) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.done:
			n.drain(ctx)
			return nil
		case line := <-n.queue:
			n.handle(ctx, line)
		}
	}
}

func (n *Notifier) drain(ctx context.Context) {
	for {
		select {
		case line := <-n.queue:
			n.handle(ctx, line)
		default:
			return
		}
	}
}

// handle pushes line to the webhook first, then to the TCP endpoint.
func (n *Notifier) handle(ctx context.Context, line string) {
	now := time.Now()
	for _, s := range []*sink{n.webhook, n.tcp} {
		if s != nil {
			n.handleSink(ctx, s, now, line)
		}
	}
}

func (n *Notifier) handleSink(ctx context.Context, s *sink, now time.Time, line string) {
	log := n.log.WithField("sink", s.name).WithField("endpoint", s.target)

	if now.Before(s.nextAllowed) {
		atomic.AddUint64(&s.dropped, 1)
		log.WithError(ErrBackoff).Warn("Dropped event.")
		return
	}

	if err := s.send(ctx, line); err != nil {
		atomic.AddUint64(&s.failed, 1)
		s.nextAllowed = now.Add(n.backoff)
		log.WithError(err).
			WithField("backoff", n.backoff).
			Warn("Push failed, backing off.")
		return
	}
	atomic.AddUint64(&s.sent, 1)
	s.nextAllowed = now
}

// Stats returns delivery counters.
func (n *Notifier) Stats() NotifierStats {
	var st NotifierStats
	st.Sent, st.Failed, st.Dropped = n.tcp.stats()
	st.Dropped += atomic.LoadUint64(&n.queueDropped)
	st.WebhookSent, st.WebhookFailed, st.WebhookDropped = n.webhook.stats()
	return st
}

// Close stops accepting new lines. It is safe to call more than once.
func (n *Notifier) Close() error {
	n.once.Do(func() { close(n.done) })
	return nil
}
