package scheduler

// Event types emitted by the scheduler module.
const (
	EventTypeWarmupCompleted = "com.fibonacci.warmup.completed"
	EventTypeWarmupFailed    = "com.fibonacci.warmup.failed"
)

// EventSource is the CloudEvents source of scheduler events.
const EventSource = "fibonacci.scheduler"
