package errors

// ErrorCode identifies a stable, machine-readable error category.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_CONFLICT

	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_MEETING_NOT_STARTED
	ErrorCode_MEETING_ALREADY_COMPLETED
	ErrorCode_MEETING_LEFT_EARLY
	ErrorCode_INVALID_TOPIC_INDEX
	ErrorCode_TOPIC_MISMATCH
	ErrorCode_CURSOR_NOT_FOUND
	ErrorCode_MEETING_BUSY

	ErrorCode_DIALOGUE_GENERATION_FAILED
	ErrorCode_DIALOGUE_SERVICE_UNAVAILABLE

	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED

	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED

	ErrorCode_INVALID_PAYLOAD
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:          "UNKNOWN",
	ErrorCode_INTERNAL:         "INTERNAL",
	ErrorCode_INVALID_ARGUMENT: "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:        "NOT_FOUND",
	ErrorCode_CONFLICT:         "CONFLICT",

	ErrorCode_MEETING_NOT_FOUND:         "MEETING_NOT_FOUND",
	ErrorCode_MEETING_NOT_STARTED:       "MEETING_NOT_STARTED",
	ErrorCode_MEETING_ALREADY_COMPLETED: "MEETING_ALREADY_COMPLETED",
	ErrorCode_MEETING_LEFT_EARLY:        "MEETING_LEFT_EARLY",
	ErrorCode_INVALID_TOPIC_INDEX:       "INVALID_TOPIC_INDEX",
	ErrorCode_TOPIC_MISMATCH:            "TOPIC_MISMATCH",
	ErrorCode_CURSOR_NOT_FOUND:          "CURSOR_NOT_FOUND",
	ErrorCode_MEETING_BUSY:              "MEETING_BUSY",

	ErrorCode_DIALOGUE_GENERATION_FAILED:    "DIALOGUE_GENERATION_FAILED",
	ErrorCode_DIALOGUE_SERVICE_UNAVAILABLE:  "DIALOGUE_SERVICE_UNAVAILABLE",
	ErrorCode_INTEGRATION_CACHE_FAILED:      "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:          "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:               "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:         "DB_TRANSACTION_FAILED",
	ErrorCode_INVALID_PAYLOAD:               "INVALID_PAYLOAD",
}

// String returns the stable name for the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
