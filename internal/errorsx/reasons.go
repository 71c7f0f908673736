package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonMissingCredential ReasonCode = "missing_credential"
	ReasonModelUnavailable  ReasonCode = "model_unavailable"
	ReasonUnknownTool       ReasonCode = "unknown_tool"
	ReasonToolFailure       ReasonCode = "tool_failure"
	ReasonInvalidConfig     ReasonCode = "invalid_config"
	ReasonInvalidSession    ReasonCode = "invalid_session"
)
