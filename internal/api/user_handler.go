package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/api/middleware"
	"github.com/studyforge/studyforge-api/internal/api/shared"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/service"
)

// SignUpRequest represents the request body for the sign-up hook
type SignUpRequest struct {
	ExternalID string `json:"external_id" validate:"required,min=1"`
	Email      string `json:"email"       validate:"required,email"`
	Name       string `json:"name"        validate:"max=200"`
}

// UserResponse represents the response data for a user
type UserResponse struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Credits     int       `json:"credits"`
	UsedCredits int       `json:"used_credits"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerEntryResponse represents one credit ledger entry
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// SignUp handles POST /api/users requests. Provisioning happens
// asynchronously and is idempotent, so re-delivery of the same identity
// always succeeds with 202.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.userService.SignUp(r.Context(), req.ExternalID, req.Email, req.Name); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{
		"status": "provisioning",
	})
}

// GetMe handles GET /api/users/me requests
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GetLedger handles GET /api/users/me/ledger requests. An optional
// "limit" query parameter caps the number of entries returned.
func (h *UserHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.userService.GetLedger(r.Context(), userID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ledgerEntryToResponse(entry))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// userToResponse converts a domain.User to a UserResponse
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		ExternalID:  user.ExternalID,
		Email:       user.Email,
		Name:        user.Name,
		Credits:     user.Credits,
		UsedCredits: user.UsedCredits,
		CreatedAt:   user.CreatedAt,
	}
}

// ledgerEntryToResponse converts a domain.CreditEntry to a LedgerEntryResponse
func ledgerEntryToResponse(entry *domain.CreditEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:        entry.ID.String(),
		Delta:     entry.Delta,
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt,
	}
	if entry.RequestID != nil {
		resp.RequestID = entry.RequestID.String()
	}
	return resp
}
