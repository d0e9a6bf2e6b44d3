package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/maren/memoir-builder/internal/rendering"
	"github.com/maren/memoir-builder/internal/server/middleware"
)

// handleExportPDF renders the caller's story as a PDF download.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, s.pdfRenderer)
}

// handleExportDocument renders the caller's story as a print-ready HTML
// document download.
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, s.htmlRenderer)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, renderer rendering.Renderer) {
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

	model := s.compiler.Compile(record)

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	document, err := renderer.Render(ctx, model, record.Typography)
	if err != nil {
		log.Printf("[EXPORT] render failed for user %s: %v", userID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Export failed")
		return
	}

	filename := rendering.ExportFilename(model.Title, renderer.Extension())
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(document); err != nil {
		log.Printf("[EXPORT] response write failed: %v", err)
	}
}
