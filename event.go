package notify

import (
	"fmt"
	"net"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigFastest

// Event is a single non-blank line received from a client.
type Event struct {
	Line   string
	Remote net.Addr
}

// EventKind is the kind of a device event.
type EventKind string

// Device event kinds.
const (
	KindAttach EventKind = "attach"
	KindDetach EventKind = "detach"
	KindInfo   EventKind = "info"
)

// Valid returns true if k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindAttach, KindDetach, KindInfo:
		return true
	default:
		return false
	}
}

// Device platforms as they appear on the wire.
const (
	DeviceAndroid = "Android"
	DeviceIOS     = "iOS"
	DeviceUnknown = "Unknown"
)

// DeviceInfo is a snapshot of the device an event refers to.
type DeviceInfo struct {
	Type         string `json:"type"`
	UID          string `json:"uid"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	OSVersion    string `json:"osVersion,omitempty"`
	Transport    string `json:"transport,omitempty"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
}

// DeviceEvent is the NDJSON object device monitors push, one per line.
type DeviceEvent struct {
	Timestamp string     `json:"ts"`
	Kind      EventKind  `json:"event"`
	Device    DeviceInfo `json:"device"`
}

// ParseDeviceEvent decodes a stripped line as a DeviceEvent.
// Lines that are not JSON objects, or that lack an event kind, return ErrNotDeviceEvent.
func ParseDeviceEvent(line string) (*DeviceEvent, error) {
	if len(line) == 0 || line[0] != '{' {
		return nil, ErrNotDeviceEvent
	}
	var evt DeviceEvent
	if err := json.UnmarshalFromString(line, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDeviceEvent, err)
	}
	if evt.Kind == "" {
		return nil, ErrNotDeviceEvent
	}
	if !evt.Kind.Valid() {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownKind, evt.Kind)
	}
	return &evt, nil
}

// MarshalLine encodes the event as a single line (without terminator).
// An empty timestamp is set to the current time.
func (e *DeviceEvent) MarshalLine() (string, error) {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if !e.Kind.Valid() {
		return "", fmt.Errorf("%w '%s'", ErrUnknownKind, e.Kind)
	}
	return json.MarshalToString(e)
}
