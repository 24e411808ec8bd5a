package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"spaces-backend/application/services"
	"spaces-backend/domain/core/entities"
	"spaces-backend/pkg/auth"
	"spaces-backend/pkg/common"
	"spaces-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InvitationHandler handles invitation-related HTTP requests. The acting
// user always comes from the authenticated context, never from the body.
type InvitationHandler struct {
	invitations *services.InvitationService
	logger      *zap.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations *services.InvitationService, logger *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		logger:      logger,
	}
}

// CreateInvitationRequest represents the request body for creating an invitation
type CreateInvitationRequest struct {
	SpaceID      string     `json:"spaceId" validate:"required"`
	InviteeEmail string     `json:"inviteeEmail" validate:"required,email"`
	Role         string     `json:"role,omitempty" validate:"omitempty,oneof=admin member viewer"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	WithCode     bool       `json:"withCode,omitempty"`
	Message      string     `json:"message,omitempty" validate:"omitempty,max=500"`
	SpaceName    string     `json:"spaceName,omitempty" validate:"omitempty,max=200"`
	InviterName  string     `json:"inviterName,omitempty" validate:"omitempty,max=200"`
}

// AcceptInvitationRequest represents the request body for accepting an invitation
type AcceptInvitationRequest struct {
	Code string `json:"code,omitempty"`
}

// InvitationResponse is the wire shape of an invitation
type InvitationResponse struct {
	ID           string     `json:"id"`
	SpaceID      string     `json:"spaceId"`
	InviteeEmail string     `json:"inviteeEmail"`
	InviterID    string     `json:"inviterId"`
	Status       string     `json:"status"`
	Role         string     `json:"role"`
	Message      string     `json:"message,omitempty"`
	SpaceName    string     `json:"spaceName,omitempty"`
	InviterName  string     `json:"inviterName,omitempty"`
	Code         string     `json:"code,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	AcceptedAt   *time.Time `json:"acceptedAt,omitempty"`
}

func toInvitationResponse(inv *entities.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:           inv.ID().String(),
		SpaceID:      inv.SpaceID().String(),
		InviteeEmail: inv.InviteeEmail().String(),
		InviterID:    inv.InviterUserID(),
		Status:       string(inv.Status()),
		Role:         string(inv.Role()),
		Message:      inv.Message(),
		SpaceName:    inv.SpaceName(),
		InviterName:  inv.InviterName(),
		Code:         inv.Code(),
		CreatedAt:    inv.CreatedAt(),
		ExpiresAt:    inv.ExpiresAt(),
		AcceptedAt:   inv.AcceptedAt(),
	}
}

// CreateInvitation handles POST /invitations
func (h *InvitationHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	inv, err := h.invitations.Create(r.Context(), services.CreateInvitationInput{
		SpaceID:       req.SpaceID,
		InviteeEmail:  req.InviteeEmail,
		InviterUserID: userCtx.UserID,
		Role:          req.Role,
		ExpiresAt:     req.ExpiresAt,
		WithCode:      req.WithCode,
		Message:       req.Message,
		SpaceName:     req.SpaceName,
		InviterName:   req.InviterName,
	})
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toInvitationResponse(inv))
}

// AcceptInvitation handles POST /invitations/{invitationID}/accept and
// POST /invitations/accept (code in the body).
func (h *InvitationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var identifier services.AcceptIdentifier
	if invitationID := chi.URLParam(r, "invitationID"); invitationID != "" {
		identifier = services.ByID(invitationID)
	} else {
		var req AcceptInvitationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "An invitation code is required")
			return
		}
		identifier = services.ByCode(req.Code)
	}

	inv, err := h.invitations.Accept(r.Context(), services.AcceptInvitationInput{
		Identifier:           identifier,
		AcceptingUserID:      userCtx.UserID,
		ExpectedInviteeEmail: userCtx.Email,
	})
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toInvitationResponse(inv))
}

// CancelInvitation handles DELETE /invitations/{invitationID}
func (h *InvitationHandler) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	invitationID := chi.URLParam(r, "invitationID")
	if err := h.invitations.Cancel(r.Context(), invitationID, userCtx.UserID); err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ValidateCode handles GET /invitations/validate?code=...
func (h *InvitationHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	valid, err := h.invitations.ValidateCode(r.Context(), code)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// ListMyInvitations handles GET /invitations, the caller's pending inbox
func (h *InvitationHandler) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}
	if userCtx.Email == "" {
		common.RespondJSON(w, http.StatusOK, []InvitationResponse{})
		return
	}

	invitations, err := h.invitations.GetPendingForUser(r.Context(), userCtx.Email)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toInvitationResponses(invitations))
}

// ListSpaceInvitations handles GET /spaces/{spaceID}/invitations
func (h *InvitationHandler) ListSpaceInvitations(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	spaceID := chi.URLParam(r, "spaceID")
	invitations, err := h.invitations.GetPendingForSpace(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toInvitationResponses(invitations))
}

// ListAllInvitations handles GET /admin/invitations
func (h *InvitationHandler) ListAllInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.invitations.ListAll(r.Context())
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toInvitationResponses(invitations))
}

func toInvitationResponses(invitations []*entities.Invitation) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	return out
}
