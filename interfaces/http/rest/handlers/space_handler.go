package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"spaces-backend/application/services"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	"spaces-backend/pkg/auth"
	"spaces-backend/pkg/common"
	"spaces-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SpaceHandler handles space and membership HTTP requests
type SpaceHandler struct {
	spaces      *services.SpaceService
	memberships *services.MembershipService
	logger      *zap.Logger
}

// NewSpaceHandler creates a new space handler
func NewSpaceHandler(spaces *services.SpaceService, memberships *services.MembershipService, logger *zap.Logger) *SpaceHandler {
	return &SpaceHandler{
		spaces:      spaces,
		memberships: memberships,
		logger:      logger,
	}
}

// CreateSpaceRequest represents the request body for creating a space
type CreateSpaceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// UpdateSpaceRequest represents the request body for updating a space
type UpdateSpaceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// AddMemberRequest represents the request body for adding a member
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=admin member viewer"`
}

// JoinSpaceRequest represents the request body for joining via invite code
type JoinSpaceRequest struct {
	Code string `json:"code" validate:"required"`
}

// SpaceResponse is the wire shape of a space
type SpaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	JoinCode    string    `json:"joinCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MemberResponse is the wire shape of a membership
type MemberResponse struct {
	SpaceID  string    `json:"spaceId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

func toSpaceResponse(space *entities.Space, includeJoinCode bool) SpaceResponse {
	resp := SpaceResponse{
		ID:          space.ID().String(),
		Name:        space.Name(),
		Description: space.Description(),
		OwnerID:     space.OwnerUserID(),
		CreatedAt:   space.CreatedAt(),
	}
	if includeJoinCode {
		resp.JoinCode = space.JoinCode()
	}
	return resp
}

func toMemberResponse(m *entities.Membership) MemberResponse {
	return MemberResponse{
		SpaceID:  m.SpaceID().String(),
		UserID:   m.UserID(),
		Role:     string(m.Role()),
		JoinedAt: m.JoinedAt(),
	}
}

// CreateSpace handles POST /spaces
func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req CreateSpaceRequest
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

	space, err := h.spaces.CreateSpace(r.Context(), req.Name, req.Description, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toSpaceResponse(space, true))
}

// GetSpace handles GET /spaces/{spaceID}
func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	space, err := h.spaces.GetSpace(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	// Only member-managing roles see the join code.
	member, err := h.memberships.GetMember(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}
	includeJoinCode := member != nil && member.Role().CanManageMembers()

	common.RespondJSON(w, http.StatusOK, toSpaceResponse(space, includeJoinCode))
}

// UpdateSpace handles PUT /spaces/{spaceID}
func (h *SpaceHandler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	var req UpdateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	space, err := h.spaces.UpdateSpace(r.Context(), spaceID, req.Name, req.Description, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toSpaceResponse(space, false))
}

// DeleteSpace handles DELETE /spaces/{spaceID}
func (h *SpaceHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	if err := h.spaces.DeleteSpace(r.Context(), spaceID, userCtx.UserID); err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListMySpaces handles GET /spaces, the caller's memberships
func (h *SpaceHandler) ListMySpaces(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	memberships, err := h.memberships.ListSpacesForUser(r.Context(), userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toMemberResponses(memberships))
}

// ListMembers handles GET /spaces/{spaceID}/members
func (h *SpaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	members, err := h.memberships.ListMembers(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toMemberResponses(members))
}

// AddMember handles POST /spaces/{spaceID}/members
func (h *SpaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	role := entities.Role(req.Role)
	if req.Role == "" {
		role = entities.RoleMember
	}

	if err := h.memberships.AddMember(r.Context(), spaceID, req.UserID, role, userCtx.UserID); err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// RemoveMember handles DELETE /spaces/{spaceID}/members/{userID}
func (h *SpaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	targetUserID := chi.URLParam(r, "userID")
	if err := h.memberships.RemoveMember(r.Context(), spaceID, targetUserID, userCtx.UserID); err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// JoinSpace handles POST /spaces/join, invite-code redemption
func (h *SpaceHandler) JoinSpace(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req JoinSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.memberships.RedeemInviteCode(r.Context(), req.Code, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"spaceId":   result.SpaceID.String(),
		"spaceName": result.SpaceName,
		"role":      string(result.Role),
		"joinedAt":  result.JoinedAt,
	})
}

// RegenerateInviteCode handles POST /spaces/{spaceID}/invite-code
func (h *SpaceHandler) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.spaceRequest(w, r)
	if !ok {
		return
	}

	code, err := h.memberships.RegenerateInviteCode(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"joinCode": code})
}

// spaceRequest resolves the authenticated user and the spaceID URL param
func (h *SpaceHandler) spaceRequest(w http.ResponseWriter, r *http.Request) (*auth.UserContext, valueobjects.SpaceID, bool) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return nil, valueobjects.SpaceID{}, false
	}

	spaceID, err := valueobjects.NewSpaceIDFromString(chi.URLParam(r, "spaceID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid space ID")
		return nil, valueobjects.SpaceID{}, false
	}
	return userCtx, spaceID, true
}

func toMemberResponses(memberships []*entities.Membership) []MemberResponse {
	out := make([]MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, toMemberResponse(m))
	}
	return out
}
