package notify

import "time"

// Constants.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9009

	// DefaultAddr is the address the listener binds to when none is configured.
	DefaultAddr = "127.0.0.1:9009"

	// DefaultLabel prefixes every printed event line.
	DefaultLabel = "event:"

	// DefaultBacklog is the listen backlog depth the listener is documented with.
	// The Go runtime passes the system maximum to listen(2), so this is informational.
	DefaultBacklog = 5

	// DefaultNotifierBackoff is how long a Notifier stops pushing after a failed push.
	DefaultNotifierBackoff = 3 * time.Second

	DefaultDialTimeout = 5 * time.Second

	// DefaultProxyHeaderTimeout bounds how long a PROXY protocol header may take to arrive.
	DefaultProxyHeaderTimeout = 5 * time.Second

	DefaultQueueSize = 256

	acceptRetryDelay = 100 * time.Millisecond
	maxWebhookReply  = 64 << 10
)
