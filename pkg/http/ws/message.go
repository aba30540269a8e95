package ws

import (
	"encoding/json"
	"fmt"
)

// MessageType constants for the session WebSocket protocol.
const (
	// Client -> Server
	TypeRecordAnswer = "record_answer"
	TypeAdvance      = "advance"
	TypeRetreat      = "retreat"
	TypeReset        = "reset"
	TypeRequestState = "request_state"
	TypePing         = "ping"

	// Server -> Client
	TypeSessionState    = "session_state"
	TypeSessionComplete = "session_complete"
	TypeError           = "error"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType, requestID string, payload any) (Message, error) {
	msg := Message{Type: msgType, RequestID: requestID}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// RecordAnswerPayload carries a string or a list of selected values.
type RecordAnswerPayload struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
