package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeLoginFailed            = "login_failed"
	ErrCodeRefreshFailed          = "refresh_failed"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeUnsupportedMedia = "unsupported_media_type"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Quiz errors
	ErrCodeQuizNotFound  = "quiz_not_found"
	ErrCodeInvalidQuizID = "invalid_quiz_id"
	ErrCodeQuizInvalid   = "quiz_invalid"
	ErrCodeQuizEmpty     = "quiz_empty"
	ErrCodeInvalidEdit   = "invalid_edit"
	ErrCodeEditTarget    = "edit_target_not_found"

	// Session errors
	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeInvalidSessionID = "invalid_session_id"
	ErrCodeSessionCompleted = "session_completed"
	ErrCodeSessionBusy      = "session_busy"
	ErrCodeAnswerRequired   = "answer_required"
	ErrCodeInvalidAnswer    = "invalid_answer"
	ErrCodeUnknownQuestion  = "unknown_question"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Stats errors
	ErrCodeStatsFetchFailed = "stats_fetch_failed"
)
