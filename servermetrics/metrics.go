package servermetrics

// DeltaType represents a change in the number of served connections.
type DeltaType int

// Deltas.
const (
	DeltaFailed     DeltaType = 0
	DeltaConnect    DeltaType = 1
	DeltaDisconnect DeltaType = -1
)

// Metrics collects metrics for metrics tracking system.
type Metrics interface {
	RecordConn(delta DeltaType)
	RecordEvent(kind string)
	RecordBlank()
}
