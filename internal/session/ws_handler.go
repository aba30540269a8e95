package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/quiz"
	httperrors "github.com/gokatarajesh/quizflow/pkg/http/errors"
	ws "github.com/gokatarajesh/quizflow/pkg/http/ws"
)

// WSHandler drives a session over a WebSocket. Every connection watching a
// session receives the new state after any transition, including ones made
// through the REST endpoints.
type WSHandler struct {
	service  *Service
	hub      *ws.Hub
	upgrader websocket.Upgrader
	publish  func(view *View, requestID string) error
	logger   zerolog.Logger
}

// NewWSHandler creates a session WebSocket handler.
func NewWSHandler(service *Service, hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	h := &WSHandler{
		service:  service,
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "session_ws").Logger(),
	}
	h.publish = h.Publish
	return h
}

// SetPublisher routes transition results through fn instead of delivering
// them to local connections directly, e.g. via a Broadcaster.
func (h *WSHandler) SetPublisher(fn func(view *View, requestID string) error) {
	h.publish = fn
}

// HandleWebSocket handles GET /ws/sessions/{id}
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		status, code := ErrorCode(err)
		if status == http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("session_id", id.String()).Msg("load session for websocket failed")
			httperrors.RespondInternalError(w, "Internal server error")
			return
		}
		httperrors.RespondError(w, status, code, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.handleConnection(conn, id, view)
}

func (h *WSHandler) handleConnection(conn *websocket.Conn, sessionID uuid.UUID, initial *View) {
	connID := uuid.New()
	logger := h.logger.With().Str("session_id", sessionID.String()).Str("connection_id", connID.String()).Logger()

	wsConn := ws.NewConnection(conn, logger)
	h.hub.Register(connID, wsConn)
	h.hub.Join(sessionID, connID)

	go wsConn.WritePump()

	if err := h.send(connID, ws.TypeSessionState, "", initial); err != nil {
		logger.Warn().Err(err).Msg("send initial state failed")
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), connID, sessionID, msg)
	})

	h.hub.Unregister(connID)
}

func (h *WSHandler) handleMessage(ctx context.Context, connID, sessionID uuid.UUID, msg ws.Message) error {
	var (
		view *View
		err  error
	)
	switch msg.Type {
	case ws.TypePing:
		return h.send(connID, ws.TypePong, msg.RequestID, nil)
	case ws.TypeRequestState:
		view, err = h.service.Get(ctx, sessionID)
		if err != nil {
			return h.sendServiceError(connID, msg.RequestID, err)
		}
		return h.send(connID, ws.TypeSessionState, msg.RequestID, view)
	case ws.TypeRecordAnswer:
		var req ws.RecordAnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid record_answer payload")
		}
		var answer quiz.Answer
		if err := json.Unmarshal(req.Answer, &answer); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidAnswer, "Answer must be a string or a list of strings")
		}
		view, err = h.service.RecordAnswer(ctx, sessionID, req.QuestionID, answer)
	case ws.TypeAdvance:
		view, err = h.service.Advance(ctx, sessionID)
	case ws.TypeRetreat:
		view, err = h.service.Retreat(ctx, sessionID)
	case ws.TypeReset:
		view, err = h.service.Reset(ctx, sessionID)
	default:
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}

	if err != nil {
		return h.sendServiceError(connID, msg.RequestID, err)
	}
	return h.publish(view, msg.RequestID)
}

// Publish broadcasts a session view to every connection watching it.
func (h *WSHandler) Publish(view *View, requestID string) error {
	msgType := ws.TypeSessionState
	if view.Completed {
		msgType = ws.TypeSessionComplete
	}
	msg, err := ws.NewMessage(msgType, requestID, view)
	if err != nil {
		return err
	}
	return h.hub.Broadcast(view.SessionID, msg)
}

func (h *WSHandler) send(connID uuid.UUID, msgType, requestID string, payload any) error {
	msg, err := ws.NewMessage(msgType, requestID, payload)
	if err != nil {
		return err
	}
	return h.hub.Send(connID, msg)
}

func (h *WSHandler) sendServiceError(connID uuid.UUID, requestID string, err error) error {
	status, code := ErrorCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("session message failed")
		message = "Internal server error"
	}
	return h.sendError(connID, requestID, code, message)
}

func (h *WSHandler) sendError(connID uuid.UUID, requestID, code, message string) error {
	return h.send(connID, ws.TypeError, requestID, ws.ErrorPayload{Code: code, Message: message})
}

// Routes registers the WebSocket endpoint on r.
func (h *WSHandler) Routes(r *mux.Router) {
	r.HandleFunc("/ws/sessions/{id}", h.HandleWebSocket).Methods(http.MethodGet)
}
