package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context through a call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldQueryID identifies a single recommendation query
	FieldQueryID = "query_id"

	// FieldSessionID identifies an interactive chat session
	FieldSessionID = "session_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldCacheBackend is the embedding cache backend in use
	FieldCacheBackend = "cache_backend"

	// FieldSource is the catalog source identifier
	FieldSource = "source"
)

// Metric fields, attached per log line through the Entry API.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldTotal is the size of the set a count refers to
	FieldTotal = "total"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is the response size in bytes
	FieldSize = "size"
)
