package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/llm"
	"github.com/maren/memoir-builder/internal/rendering"
	"github.com/maren/memoir-builder/internal/server/middleware"
	"github.com/maren/memoir-builder/internal/share"
	"github.com/maren/memoir-builder/internal/types"
)

// fakeStore is an in-memory StoryStore.
type fakeStore struct {
	records map[uuid.UUID]*types.StoryRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[uuid.UUID]*types.StoryRecord{}}
}

func (f *fakeStore) FindStoryByOwner(_ context.Context, ownerID uuid.UUID) (*types.StoryRecord, error) {
	record, ok := f.records[ownerID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeStore) UpsertStory(_ context.Context, ownerID uuid.UUID, record *types.StoryRecord) (*types.StoryRecord, error) {
	clone := record.WithDefaults()
	clone.OwnerID = ownerID
	if existing, ok := f.records[ownerID]; ok {
		clone.ShareSlug = existing.ShareSlug
		clone.CreatedAt = existing.CreatedAt
	} else {
		clone.CreatedAt = time.Now().UTC()
	}
	clone.UpdatedAt = time.Now().UTC()
	f.records[ownerID] = &clone
	result := clone
	return &result, nil
}

func (f *fakeStore) FindStoryBySlug(_ context.Context, slug string) (*types.StoryRecord, error) {
	for _, record := range f.records {
		if record.ShareSlug == slug {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, record := range f.records {
		if record.ShareSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AssignSlug(_ context.Context, ownerID uuid.UUID, slug string) error {
	record, ok := f.records[ownerID]
	if !ok {
		return fmt.Errorf("no story for owner %s", ownerID)
	}
	if record.ShareSlug != "" {
		return fmt.Errorf("story already shared")
	}
	record.ShareSlug = slug
	return nil
}

func newTestServer(t *testing.T, store *fakeStore) *Server {
	t.Helper()

	htmlRenderer, err := rendering.NewHTMLRenderer()
	require.NoError(t, err)
	pdfRenderer, err := rendering.NewPDFRenderer()
	require.NoError(t, err)

	return &Server{
		store:        store,
		producer:     llm.NewProducer(nil),
		compiler:     content.NewCompiler(),
		allocator:    share.NewAllocator(store),
		htmlRenderer: htmlRenderer,
		pdfRenderer:  pdfRenderer,
	}
}

func authedRequest(method, target string, body any, userID uuid.UUID) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	return middleware.WithUserID(r, userID)
}

func TestGetStoryNotFound(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	userID := uuid.New()

	w := httptest.NewRecorder()
	s.handleGetStory(w, authedRequest(http.MethodGet, "/story", nil, userID))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Story not found")
}

func TestUpdateStoryCreatesAndPatches(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	title := "My Years"
	typography := "playfair"
	w := httptest.NewRecorder()
	s.handleUpdateStory(w, authedRequest(http.MethodPut, "/story", types.UpdateStoryRequest{
		Title:      &title,
		Typography: &typography,
	}, userID))

	require.Equal(t, http.StatusOK, w.Code)

	var saved types.StoryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "My Years", saved.Title)
	assert.Equal(t, types.TypographyPlayfair, saved.Typography)

	// Second update leaves the title alone.
	quotes := []string{"onward"}
	w = httptest.NewRecorder()
	s.handleUpdateStory(w, authedRequest(http.MethodPut, "/story", types.UpdateStoryRequest{
		FavoriteQuotes: &quotes,
	}, userID))

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "My Years", saved.Title)
	assert.Equal(t, []string{"onward"}, saved.FavoriteQuotes)
}

func TestUpdateStoryUnknownTypographyFallsBack(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	userID := uuid.New()

	typography := "comic-sans"
	w := httptest.NewRecorder()
	s.handleUpdateStory(w, authedRequest(http.MethodPut, "/story", types.UpdateStoryRequest{
		Typography: &typography,
	}, userID))

	require.Equal(t, http.StatusOK, w.Code)
	var saved types.StoryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, types.DefaultTypography, saved.Typography)
}

func TestAddTimelineEvent(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	userID := uuid.New()

	w := httptest.NewRecorder()
	s.handleAddTimelineEvent(w, authedRequest(http.MethodPost, "/story/timeline", types.AddTimelineEventRequest{
		Title:       "Graduation",
		Description: "Finished school.",
	}, userID))

	require.Equal(t, http.StatusOK, w.Code)

	var saved types.StoryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.Len(t, saved.Timeline, 1)
	assert.Equal(t, "Graduation", saved.Timeline[0].Title)
	assert.Equal(t, types.DefaultTimelineCategory, saved.Timeline[0].Category)
	assert.NotEqual(t, uuid.Nil, saved.Timeline[0].ID)
}

func TestAddTimelineEventRejectsEmptyTitle(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	w := httptest.NewRecorder()
	s.handleAddTimelineEvent(w, authedRequest(http.MethodPost, "/story/timeline", types.AddTimelineEventRequest{
		Description: "no title",
	}, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
}

func TestDeleteTimelineEvent(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()
	eventID := uuid.New()

	store.records[userID] = &types.StoryRecord{
		OwnerID: userID,
		Timeline: []types.TimelineEvent{
			{ID: eventID, Title: "Keep me not"},
			{ID: uuid.New(), Title: "Keep me"},
		},
	}

	r := authedRequest(http.MethodDelete, "/story/timeline/"+eventID.String(), nil, userID)
	r.SetPathValue("id", eventID.String())
	w := httptest.NewRecorder()
	s.handleDeleteTimelineEvent(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var saved types.StoryRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.Len(t, saved.Timeline, 1)
	assert.Equal(t, "Keep me", saved.Timeline[0].Title)
}

func TestDeleteTimelineEventUnknownID(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	store.records[userID] = &types.StoryRecord{OwnerID: userID}

	missing := uuid.New()
	r := authedRequest(http.MethodDelete, "/story/timeline/"+missing.String(), nil, userID)
	r.SetPathValue("id", missing.String())
	w := httptest.NewRecorder()
	s.handleDeleteTimelineEvent(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Timeline event not found")
}

func TestGenerateDraftWithoutAPIKeyStoresPlaceholder(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	w := httptest.NewRecorder()
	s.handleGenerateDraft(w, authedRequest(http.MethodPost, "/story/drafts", types.GenerateDraftRequest{
		Style: "poetic",
	}, userID))

	require.Equal(t, http.StatusOK, w.Code)

	var resp DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, llm.PlaceholderNoKey, resp.Draft)
	require.Len(t, resp.Story.GeneratedDrafts, 1)
	assert.Equal(t, types.StylePoetic, resp.Story.GeneratedDrafts[0].Style)
}

func TestGenerateDraftUnknownStyleNormalizes(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	w := httptest.NewRecorder()
	s.handleGenerateDraft(w, authedRequest(http.MethodPost, "/story/drafts", types.GenerateDraftRequest{
		Style: "sarcastic",
	}, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	var resp DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.StyleSimple, resp.Story.GeneratedDrafts[0].Style)
}

func TestExportDocument(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	store.records[userID] = &types.StoryRecord{
		OwnerID:           userID,
		Title:             "Dreams, Beliefs & Goals",
		SelectedDraftText: "It began in a small town.",
	}

	w := httptest.NewRecorder()
	s.handleExportDocument(w, authedRequest(http.MethodGet, "/export/document", nil, userID))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Dreams_Beliefs_Goals.html"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "It began in a small town.")
}

func TestExportNotFound(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	w := httptest.NewRecorder()
	s.handleExportDocument(w, authedRequest(http.MethodGet, "/export/document", nil, uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	s.handleExportPDF(w, authedRequest(http.MethodGet, "/export/pdf", nil, uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareStoryAllocatesOnce(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	store.records[userID] = &types.StoryRecord{OwnerID: userID, Title: "Shareable"}

	w := httptest.NewRecorder()
	s.handleShareStory(w, authedRequest(http.MethodPost, "/story/share", nil, userID))
	require.Equal(t, http.StatusOK, w.Code)

	var first ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Len(t, first.Slug, 10)

	// Sharing again returns the same slug instead of allocating a new one.
	w = httptest.NewRecorder()
	s.handleShareStory(w, authedRequest(http.MethodPost, "/story/share", nil, userID))
	require.Equal(t, http.StatusOK, w.Code)

	var second ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Slug, second.Slug)
}

func TestShareStoryNotFound(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	w := httptest.NewRecorder()
	s.handleShareStory(w, authedRequest(http.MethodPost, "/story/share", nil, uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicStoryRedactsRecord(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store)
	userID := uuid.New()

	store.records[userID] = &types.StoryRecord{
		OwnerID:           userID,
		Title:             "Open Book",
		SelectedDraftText: "The public narrative.",
		GeneratedDrafts: []types.Draft{
			{Style: types.StyleSimple, Text: "secret rejected draft"},
		},
		Typography: types.TypographyLora,
		ShareSlug:  "abcdefghij",
	}

	r := httptest.NewRequest(http.MethodGet, "/share/abcdefghij", nil)
	r.SetPathValue("slug", "abcdefghij")
	w := httptest.NewRecorder()
	s.handlePublicStory(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp PublicStoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Open Book", resp.Content.Title)
	assert.Equal(t, types.TypographyLora, resp.Typography)

	// Only compiled content crosses the public boundary.
	body := w.Body.String()
	assert.NotContains(t, body, "secret rejected draft")
	assert.NotContains(t, body, userID.String())
}

func TestPublicStoryUnknownSlug(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	r := httptest.NewRequest(http.MethodGet, "/share/nosuchslug", nil)
	r.SetPathValue("slug", "nosuchslug")
	w := httptest.NewRecorder()
	s.handlePublicStory(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
