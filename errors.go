package notify

import (
	"errors"
	"net"
)

// Listener errors.
var (
	ErrBind            = errors.New("failed to bind listener")
	ErrInvalidEncoding = errors.New("line is not valid utf-8")
)

// Device event errors.
var (
	ErrNotDeviceEvent = errors.New("line is not a device event")
	ErrUnknownKind    = errors.New("unknown device event kind")
)

// Notifier errors.
var (
	ErrNotifierClosed = errors.New("notifier closed")
	ErrQueueFull      = errors.New("notifier queue is full")
	ErrInvalidAddr    = errors.New("invalid endpoint address")
	ErrInvalidWebhook = errors.New("invalid webhook url")
	ErrWebhookStatus  = errors.New("webhook rejected event")
	ErrBackoff        = errors.New("notifier is backing off after a failed push")
)

func isTemporary(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || netErr.Temporary() //nolint:staticcheck
	}
	return false
}
