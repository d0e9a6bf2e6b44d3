package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/maren/memoir-builder/internal/server/middleware"
	"github.com/maren/memoir-builder/internal/types"
)

// handleGetStory returns the caller's story record.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	record, err := s.store.FindStoryByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		s.errorResponse(w, http.StatusNotFound, "Story not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleUpdateStory applies a partial update to the caller's story, creating
// it if absent.
func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpdateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	record, err := s.store.FindStoryByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		record = &types.StoryRecord{OwnerID: userID}
	}

	if req.Answers != nil {
		record.Answers = *req.Answers
	}
	if req.SelectedDraftText != nil {
		record.SelectedDraftText = *req.SelectedDraftText
	}
	if req.FavoriteQuotes != nil {
		record.FavoriteQuotes = *req.FavoriteQuotes
	}
	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.CoverImageRef != nil {
		record.CoverImageRef = *req.CoverImageRef
	}
	if req.Typography != nil {
		record.Typography = types.NormalizeTypography(*req.Typography)
	}

	saved, err := s.store.UpsertStory(r.Context(), userID, record)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save story")
		return
	}

	s.jsonResponse(w, http.StatusOK, saved)
}

// handleAddTimelineEvent appends a timeline event to the caller's story,
// creating the story if absent.
func (s *Server) handleAddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.AddTimelineEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	record, err := s.store.FindStoryByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		record = &types.StoryRecord{OwnerID: userID}
	}

	record.Timeline = append(record.Timeline, req.Event())

	saved, err := s.store.UpsertStory(r.Context(), userID, record)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save story")
		return
	}

	s.jsonResponse(w, http.StatusOK, saved)
}

// handleDeleteTimelineEvent removes one timeline event by ID.
func (s *Server) handleDeleteTimelineEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid event ID format")
		return
	}

	record, err := s.store.FindStoryByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		s.errorResponse(w, http.StatusNotFound, "Story not found")
		return
	}

	kept := record.Timeline[:0:0]
	found := false
	for _, event := range record.Timeline {
		if event.ID == eventID {
			found = true
			continue
		}
		kept = append(kept, event)
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "Timeline event not found")
		return
	}
	record.Timeline = kept

	saved, err := s.store.UpsertStory(r.Context(), userID, record)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save story")
		return
	}

	s.jsonResponse(w, http.StatusOK, saved)
}

// DraftResponse carries the freshly generated draft plus the updated story.
type DraftResponse struct {
	Draft string             `json:"draft"`
	Story *types.StoryRecord `json:"story"`
}

// handleGenerateDraft asks the AI producer for a new draft and appends it to
// the story. Producer failures are recovered with placeholder text inside the
// producer, so the draft list always grows by one.
func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.GenerateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	style := types.NormalizeStyle(req.Style)

	record, err := s.store.FindStoryByOwner(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		record = &types.StoryRecord{OwnerID: userID}
	}

	text := s.producer.Generate(r.Context(), style, record.Answers)
	record.GeneratedDrafts = append(record.GeneratedDrafts, types.Draft{
		Style:     style,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})

	saved, err := s.store.UpsertStory(r.Context(), userID, record)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save story")
		return
	}

	s.jsonResponse(w, http.StatusOK, DraftResponse{Draft: text, Story: saved})
}
