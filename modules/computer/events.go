package computer

// Event types emitted by the computer module.
const (
	EventTypeTermComputed = "com.fibonacci.term.computed"
	EventTypeTermFailed   = "com.fibonacci.term.failed"
	EventTypeReconfigured = "com.fibonacci.computer.reconfigured"
)

// EventSource is the CloudEvents source of computer events.
const EventSource = "fibonacci.computer"
