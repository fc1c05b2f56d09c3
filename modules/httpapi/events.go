package httpapi

// Event types emitted by the httpapi module.
const (
	EventTypeServerStarted = "com.fibonacci.http.started"
	EventTypeServerStopped = "com.fibonacci.http.stopped"
)

// EventSource is the CloudEvents source of httpapi events.
const EventSource = "fibonacci.httpapi"
