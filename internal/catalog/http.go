package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/auth"
	"github.com/gokatarajesh/quizflow/internal/quiz"
	httperrors "github.com/gokatarajesh/quizflow/pkg/http/errors"
)

// HTTPHandlers exposes the quiz catalog.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for catalog endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "catalog_http").Logger(),
	}
}

// PublicRoutes registers the read-only listing endpoints.
func (h *HTTPHandlers) PublicRoutes(r *mux.Router) {
	r.HandleFunc("/v1/quizzes", h.List).Methods(http.MethodGet)
	r.HandleFunc("/v1/quizzes/{id}", h.Get).Methods(http.MethodGet)
}

// AuthorRoutes registers the authoring endpoints. r must be guarded by
// auth.RequireAuthor.
func (h *HTTPHandlers) AuthorRoutes(r *mux.Router) {
	r.HandleFunc("/v1/quizzes", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/v1/quizzes/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/v1/quizzes/{id}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/v1/quizzes/{id}/edits", h.Apply).Methods(http.MethodPost)
	r.HandleFunc("/v1/quizzes/{id}/validate", h.Validate).Methods(http.MethodPost)
	r.HandleFunc("/v1/quizzes/{id}/export", h.Export).Methods(http.MethodGet)
}

// List handles GET /v1/quizzes?limit=&offset=
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"quizzes": items})
}

// Get handles GET /v1/quizzes/{id}. Players see the summary only.
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(rec))
}

// Create handles POST /v1/quizzes. The body is a JSON or YAML quiz document;
// an empty body starts a blank quiz.
func (h *HTTPHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var (
		result *SaveResult
		err    error
	)
	if r.ContentLength == 0 {
		result, err = h.service.Create(r.Context(), claims.Email, quiz.NewQuiz(r.URL.Query().Get("title")))
	} else {
		format := quiz.FormatFromContentType(r.Header.Get("Content-Type"))
		result, err = h.service.Import(r.Context(), claims.Email, format, r.Body)
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Update handles PUT /v1/quizzes/{id}
func (h *HTTPHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	format := quiz.FormatFromContentType(r.Header.Get("Content-Type"))
	result, err := h.service.UpdateFrom(r.Context(), id, format, r.Body)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/quizzes/{id}
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply handles POST /v1/quizzes/{id}/edits
func (h *HTTPHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}

	var edit quiz.Edit
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.service.maxBytes)).Decode(&edit); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if edit.Op == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "op is required", "op")
		return
	}

	result, err := h.service.Apply(r.Context(), id, edit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Validate handles POST /v1/quizzes/{id}/validate
func (h *HTTPHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	report, err := h.service.Validate(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Export handles GET /v1/quizzes/{id}/export
func (h *HTTPHandlers) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}
	filename, data, err := h.service.Export(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func quizID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidQuizID, "Invalid quiz ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.Is(err, quiz.ErrPayloadTooLarge):
		httperrors.RespondError(w, http.StatusRequestEntityTooLarge, httperrors.ErrCodePayloadTooLarge, err.Error())
	case errors.Is(err, quiz.ErrMalformedDocument):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, quiz.ErrUnsupportedFormat):
		httperrors.RespondError(w, http.StatusUnsupportedMediaType, httperrors.ErrCodeUnsupportedMedia, err.Error())
	case errors.Is(err, quiz.ErrSectionNotFound),
		errors.Is(err, quiz.ErrQuestionNotFound),
		errors.Is(err, quiz.ErrOptionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeEditTarget, err.Error())
	case errors.Is(err, quiz.ErrIndexOutOfRange),
		errors.Is(err, quiz.ErrTooFewOptions),
		errors.Is(err, quiz.ErrUnknownEdit),
		errors.Is(err, quiz.ErrInvalidEdit):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidEdit, err.Error())
	default:
		h.logger.Error().Err(err).Msg("catalog request failed")
		httperrors.RespondInternalError(w, "Internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
