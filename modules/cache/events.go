package cache

// Event types emitted by the cache module.
const (
	EventTypeCacheConnected    = "com.fibonacci.cache.connected"
	EventTypeCacheDisconnected = "com.fibonacci.cache.disconnected"
	EventTypeCacheFlush        = "com.fibonacci.cache.flush"
	EventTypeCacheError        = "com.fibonacci.cache.error"
)

// EventSource is the CloudEvents source of cache events.
const EventSource = "fibonacci.cache"
