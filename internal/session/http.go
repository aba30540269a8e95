package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/quiz"
	httperrors "github.com/gokatarajesh/quizflow/pkg/http/errors"
)

const maxAnswerBytes = 64 << 10

// HTTPHandlers exposes player sessions over REST.
type HTTPHandlers struct {
	service  *Service
	onChange func(*View)
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for session endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// OnChange registers a callback run after every successful transition.
func (h *HTTPHandlers) OnChange(fn func(*View)) {
	h.onChange = fn
}

// Start handles POST /v1/quizzes/{quizID}/sessions
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(mux.Vars(r)["quizID"])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidQuizID, "Invalid quiz ID")
		return
	}

	view, err := h.service.Start(r.Context(), quizID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/sessions/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Answer *quiz.Answer `json:"answer"`
}

// RecordAnswer handles PUT /v1/sessions/{id}/answers/{questionID}
func (h *HTTPHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAnswerBytes)).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Answer == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "answer is required", "answer")
		return
	}

	h.transition(w, r, func() (*View, error) {
		return h.service.RecordAnswer(r.Context(), id, mux.Vars(r)["questionID"], *req.Answer)
	})
}

// Advance handles POST /v1/sessions/{id}/next
func (h *HTTPHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func() (*View, error) { return h.service.Advance(r.Context(), id) })
}

// Retreat handles POST /v1/sessions/{id}/back
func (h *HTTPHandlers) Retreat(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func() (*View, error) { return h.service.Retreat(r.Context(), id) })
}

// Reset handles POST /v1/sessions/{id}/reset
func (h *HTTPHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.transition(w, r, func() (*View, error) { return h.service.Reset(r.Context(), id) })
}

// Result handles GET /v1/sessions/{id}/result. ?format=markdown returns the
// rendered profile instead of JSON.
func (h *HTTPHandlers) Result(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		md, err := h.service.Markdown(r.Context(), id)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, md)
		return
	}

	result, err := h.service.Result(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *HTTPHandlers) transition(w http.ResponseWriter, r *http.Request, fn func() (*View, error)) {
	view, err := fn()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if h.onChange != nil {
		h.onChange(view)
	}
	respondJSON(w, http.StatusOK, view)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// ErrorCode maps a service error to its API code and HTTP status.
func ErrorCode(err error) (int, string) {
	var startErr *StartError
	switch {
	case errors.As(err, &startErr):
		if startErr.Report.Fatal {
			return http.StatusUnprocessableEntity, httperrors.ErrCodeQuizEmpty
		}
		return http.StatusUnprocessableEntity, httperrors.ErrCodeQuizInvalid
	case errors.Is(err, quiz.ErrNotFound):
		return http.StatusNotFound, httperrors.ErrCodeQuizNotFound
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, httperrors.ErrCodeSessionNotFound
	case errors.Is(err, ErrSessionBusy):
		return http.StatusConflict, httperrors.ErrCodeSessionBusy
	case errors.Is(err, ErrSessionCompleted):
		return http.StatusConflict, httperrors.ErrCodeSessionCompleted
	case errors.Is(err, ErrAnswerRequired):
		return http.StatusBadRequest, httperrors.ErrCodeAnswerRequired
	case errors.Is(err, ErrUnknownQuestion):
		return http.StatusBadRequest, httperrors.ErrCodeUnknownQuestion
	case errors.Is(err, quiz.ErrAnswerShape),
		errors.Is(err, quiz.ErrDuplicateValue),
		errors.Is(err, quiz.ErrUnknownSelection):
		return http.StatusBadRequest, httperrors.ErrCodeInvalidAnswer
	}
	return http.StatusInternalServerError, httperrors.ErrCodeInternalError
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	status, code := ErrorCode(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("session request failed")
		httperrors.RespondInternalError(w, "Internal server error")
		return
	}

	var startErr *StartError
	if errors.As(err, &startErr) {
		httperrors.RespondErrorWithDetails(w, status, code, "Quiz failed validation", map[string]interface{}{
			"errors":   startErr.Report.Errors,
			"warnings": startErr.Report.Warnings,
		})
		return
	}
	httperrors.RespondError(w, status, code, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Routes registers the public session endpoints on r.
func (h *HTTPHandlers) Routes(r *mux.Router) {
	r.HandleFunc("/v1/quizzes/{quizID}/sessions", h.Start).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/v1/sessions/{id}/answers/{questionID}", h.RecordAnswer).Methods(http.MethodPut)
	r.HandleFunc("/v1/sessions/{id}/next", h.Advance).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}/back", h.Retreat).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}/reset", h.Reset).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}/result", h.Result).Methods(http.MethodGet)
}
