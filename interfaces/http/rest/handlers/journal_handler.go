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

// JournalHandler handles journal entry HTTP requests
type JournalHandler struct {
	journal *services.JournalService
	logger  *zap.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journal *services.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  logger,
	}
}

// CreateEntryRequest represents the request body for creating an entry
type CreateEntryRequest struct {
	Title   string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content string `json:"content" validate:"required"`
}

// EntryResponse is the wire shape of a journal entry
type EntryResponse struct {
	ID        string    `json:"id"`
	SpaceID   string    `json:"spaceId"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEntryResponse(entry *entities.JournalEntry) EntryResponse {
	return EntryResponse{
		ID:        entry.ID(),
		SpaceID:   entry.SpaceID().String(),
		AuthorID:  entry.AuthorID(),
		Title:     entry.Title(),
		Content:   entry.Content(),
		WordCount: entry.WordCount(),
		CreatedAt: entry.CreatedAt(),
	}
}

// CreateEntry handles POST /spaces/{spaceID}/journal
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.journalRequest(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	entry, err := h.journal.CreateEntry(r.Context(), spaceID, userCtx.UserID, req.Title, req.Content)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// GetEntry handles GET /spaces/{spaceID}/journal/{entryID}
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.journalRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.journal.GetEntry(r.Context(), spaceID, chi.URLParam(r, "entryID"), userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEntryResponse(entry))
}

// ListEntries handles GET /spaces/{spaceID}/journal
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.journalRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.journal.ListEntries(r.Context(), spaceID, userCtx.UserID)
	if err != nil {
		common.RespondDomainError(w, err)
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryResponse(entry))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// DeleteEntry handles DELETE /spaces/{spaceID}/journal/{entryID}
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userCtx, spaceID, ok := h.journalRequest(w, r)
	if !ok {
		return
	}

	if err := h.journal.DeleteEntry(r.Context(), spaceID, chi.URLParam(r, "entryID"), userCtx.UserID); err != nil {
		common.RespondDomainError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *JournalHandler) journalRequest(w http.ResponseWriter, r *http.Request) (*auth.UserContext, valueobjects.SpaceID, bool) {
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
