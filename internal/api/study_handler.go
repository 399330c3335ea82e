package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/api/middleware"
	"github.com/studyforge/studyforge-api/internal/api/shared"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/service"
	"github.com/studyforge/studyforge-api/internal/store"
)

// CreateStudyRequest represents the request body for enqueueing a
// study generation, and doubles as the body for the synchronous path.
type CreateStudyRequest struct {
	Topic      string `json:"topic"      validate:"required,min=1,max=500"`
	Purpose    string `json:"purpose"    validate:"max=500"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// normalize lowercases the difficulty so "Hard" and "hard" are the same
// request. Difficulty matching is case-insensitive end to end.
func (req *CreateStudyRequest) normalize() {
	req.Difficulty = strings.ToLower(req.Difficulty)
}

// StudyRequestResponse represents the response data for a study request
type StudyRequestResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Topic      string    `json:"topic"`
	Purpose    string    `json:"purpose,omitempty"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status"`
	Model      string    `json:"model,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MaterialResponse represents the response data for a study material
type MaterialResponse struct {
	ID         string      `json:"id"`
	RequestID  string      `json:"request_id,omitempty"`
	Topic      string      `json:"topic"`
	Difficulty string      `json:"difficulty"`
	Status     string      `json:"status"`
	Layout     interface{} `json:"layout"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AddDashboardItemRequest represents the request body for adding a
// material to the caller's dashboard
type AddDashboardItemRequest struct {
	MaterialID string `json:"material_id" validate:"required,uuid"`
}

// DashboardItemResponse represents one dashboard entry with display
// fields joined from its material
type DashboardItemResponse struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"material_id"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
}

// StudyHandler handles study request, material and dashboard HTTP requests
type StudyHandler struct {
	studyService service.StudyService
	validator    *validator.Validate
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(studyService service.StudyService) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		validator:    validator.New(),
	}
}

// CreateRequest handles POST /api/study-requests requests.
// Processing happens asynchronously, so the response is 202 Accepted
// with the request ID to poll.
func (h *StudyHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateStudyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	req.normalize()

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	request, err := h.studyService.CreateRequestAndEnqueue(
		r.Context(),
		userID,
		req.Topic,
		req.Purpose,
		req.Difficulty,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, requestToResponse(request))
}

// GetRequest handles GET /api/study-requests/{id} requests
func (h *StudyHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request ID")
		return
	}

	request, err := h.studyService.GetRequest(r.Context(), requestID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requestToResponse(request))
}

// CreateMaterial handles POST /api/study-materials requests. The
// generation happens inline, so the response carries the finished
// material rather than a request to poll.
func (h *StudyHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateStudyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	req.normalize()

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	material, err := h.studyService.CreateMaterialSync(
		r.Context(),
		userID,
		req.Topic,
		req.Purpose,
		req.Difficulty,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, materialToResponse(material))
}

// GetMaterial handles GET /api/study-materials/{id} requests
func (h *StudyHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	materialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	material, err := h.studyService.GetMaterial(r.Context(), materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, materialToResponse(material))
}

// ListDashboardItems handles GET /api/dashboard-items requests
func (h *StudyHandler) ListDashboardItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	entries, err := h.studyService.ListDashboard(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]DashboardItemResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dashboardEntryToResponse(entry))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// AddDashboardItem handles POST /api/dashboard-items requests.
// Adding a material that is already on the dashboard is a no-op.
func (h *StudyHandler) AddDashboardItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AddDashboardItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID")
		return
	}

	item, err := h.studyService.AddDashboardItem(r.Context(), userID, materialID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, DashboardItemResponse{
		ID:         item.ID.String(),
		MaterialID: item.MaterialID.String(),
		Progress:   item.Progress,
		CreatedAt:  item.CreatedAt,
	})
}

// requestToResponse converts a domain.StudyRequest to a StudyRequestResponse
func requestToResponse(req *domain.StudyRequest) StudyRequestResponse {
	return StudyRequestResponse{
		ID:         req.ID.String(),
		UserID:     req.UserID.String(),
		Topic:      req.Topic,
		Purpose:    req.Purpose,
		Difficulty: req.Difficulty,
		Status:     string(req.Status),
		Model:      req.Model,
		Error:      req.Error,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}
}

// materialToResponse converts a domain.StudyMaterial to a MaterialResponse.
// The layout marshals as either the structured content or a raw-text
// envelope, depending on which one the material holds.
func materialToResponse(material *domain.StudyMaterial) MaterialResponse {
	resp := MaterialResponse{
		ID:         material.ID.String(),
		Topic:      material.Topic,
		Difficulty: material.DifficultyLevel,
		Status:     string(material.Status),
		Layout:     material.Layout,
		CreatedAt:  material.CreatedAt,
	}
	if material.RequestID != nil {
		resp.RequestID = material.RequestID.String()
	}
	return resp
}

// dashboardEntryToResponse converts a store.DashboardEntry to a DashboardItemResponse
func dashboardEntryToResponse(entry *store.DashboardEntry) DashboardItemResponse {
	return DashboardItemResponse{
		ID:         entry.Item.ID.String(),
		MaterialID: entry.Item.MaterialID.String(),
		Topic:      entry.Topic,
		Difficulty: entry.Difficulty,
		Status:     string(entry.Status),
		Progress:   entry.Item.Progress,
		CreatedAt:  entry.Item.CreatedAt,
	}
}
