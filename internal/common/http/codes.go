package http

const (
	CodeUnknown          = "UNKNOWN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidPath      = "INVALID_PATH"
	CodeBodyTooLarge     = "BODY_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)
