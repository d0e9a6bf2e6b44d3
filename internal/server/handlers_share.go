package server

import (
	"net/http"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/server/middleware"
	"github.com/maren/memoir-builder/internal/types"
)

// ShareResponse carries the allocated share slug.
type ShareResponse struct {
	Slug string `json:"slug"`
}

// PublicStoryResponse is the read-only view served to share-link visitors.
// Only compiled content and cosmetic settings cross this boundary; the raw
// record, drafts, and owner identity never do.
type PublicStoryResponse struct {
	Content       *content.Model      `json:"content"`
	Typography    types.TypographyKey `json:"typography"`
	CoverImageRef string              `json:"cover_image_ref,omitempty"`
}

// handleShareStory allocates a share slug for the caller's story, or returns
// the existing one. Allocation is idempotent per story.
func (s *Server) handleShareStory(w http.ResponseWriter, r *http.Request) {
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

	if record.ShareSlug != "" {
		s.jsonResponse(w, http.StatusOK, ShareResponse{Slug: record.ShareSlug})
		return
	}

	slug, err := s.allocator.Allocate(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create share link")
		return
	}

	s.jsonResponse(w, http.StatusOK, ShareResponse{Slug: slug})
}

// handlePublicStory serves the compiled content for a shared story. No
// authentication; the slug is the capability.
func (s *Server) handlePublicStory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing slug")
		return
	}

	record, err := s.store.FindStoryBySlug(r.Context(), slug)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if record == nil {
		s.errorResponse(w, http.StatusNotFound, "Story not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, PublicStoryResponse{
		Content:       s.compiler.Compile(record),
		Typography:    record.Typography,
		CoverImageRef: record.CoverImageRef,
	})
}
