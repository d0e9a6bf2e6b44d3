package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maren/memoir-builder/internal/share"
	"github.com/maren/memoir-builder/internal/types"
)

// Stories live in one row per owner:
//
//	stories(owner_id uuid PK, title text, cover_image_ref text, typography text,
//	        selected_draft_text text, answers jsonb, generated_drafts jsonb,
//	        timeline jsonb, favorite_quotes jsonb, share_slug text UNIQUE,
//	        created_at timestamptz, updated_at timestamptz)
//
// The UNIQUE index on share_slug is the correctness backstop for slug
// allocation; see share.Allocator.

const uniqueViolationCode = "23505"

const storyColumns = `owner_id, title, cover_image_ref, typography, selected_draft_text,
	 answers, generated_drafts, timeline, favorite_quotes, COALESCE(share_slug, ''),
	 created_at, updated_at`

// FindStoryByOwner retrieves the story record for an owner.
// Returns (nil, nil) when the owner has no story yet.
func (db *DB) FindStoryByOwner(ctx context.Context, ownerID uuid.UUID) (*types.StoryRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1`, ownerID)
	return scanStory(row)
}

// FindStoryBySlug retrieves the story record published under a share slug.
// Returns (nil, nil) when no story carries the slug.
func (db *DB) FindStoryBySlug(ctx context.Context, slug string) (*types.StoryRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE share_slug = $1`, slug)
	return scanStory(row)
}

// UpsertStory inserts or updates the owner's story row. The share slug is
// deliberately not written here; AssignSlug is the only writer for it.
func (db *DB) UpsertStory(ctx context.Context, ownerID uuid.UUID, record *types.StoryRecord) (*types.StoryRecord, error) {
	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	drafts, err := json.Marshal(record.GeneratedDrafts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal drafts: %w", err)
	}
	timeline, err := json.Marshal(record.Timeline)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeline: %w", err)
	}
	quotes, err := json.Marshal(record.FavoriteQuotes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quotes: %w", err)
	}

	saved := *record
	saved.OwnerID = ownerID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO stories (owner_id, title, cover_image_ref, typography, selected_draft_text,
		                      answers, generated_drafts, timeline, favorite_quotes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   title = $2, cover_image_ref = $3, typography = $4, selected_draft_text = $5,
		   answers = $6, generated_drafts = $7, timeline = $8, favorite_quotes = $9,
		   updated_at = NOW()
		 RETURNING COALESCE(share_slug, ''), created_at, updated_at`,
		ownerID, record.Title, record.CoverImageRef, string(record.Typography),
		record.SelectedDraftText, answers, drafts, timeline, quotes,
	).Scan(&saved.ShareSlug, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert story: %w", err)
	}
	return &saved, nil
}

// SlugExists reports whether any story already carries the candidate slug.
func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM stories WHERE share_slug = $1)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// AssignSlug writes the slug to the owner's story, once. A story that already
// has a slug is never updated. A uniqueness violation from a concurrent
// allocation surfaces as share.ErrSlugTaken.
func (db *DB) AssignSlug(ctx context.Context, ownerID uuid.UUID, slug string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE stories SET share_slug = $2, updated_at = NOW()
		 WHERE owner_id = $1 AND share_slug IS NULL`,
		ownerID, slug,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return share.ErrSlugTaken
		}
		return fmt.Errorf("failed to assign slug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no unshared story for owner %s", ownerID)
	}
	return nil
}

// rowScanner lets scanStory work with both QueryRow results and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*types.StoryRecord, error) {
	var (
		record   types.StoryRecord
		typo     string
		answers  []byte
		drafts   []byte
		timeline []byte
		quotes   []byte
	)
	err := row.Scan(&record.OwnerID, &record.Title, &record.CoverImageRef, &typo,
		&record.SelectedDraftText, &answers, &drafts, &timeline, &quotes,
		&record.ShareSlug, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	record.Typography = types.TypographyKey(typo)
	if err := unmarshalColumn(answers, &record.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if err := unmarshalColumn(drafts, &record.GeneratedDrafts); err != nil {
		return nil, fmt.Errorf("failed to decode drafts: %w", err)
	}
	if err := unmarshalColumn(timeline, &record.Timeline); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}
	if err := unmarshalColumn(quotes, &record.FavoriteQuotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}

	normalized := record.WithDefaults()
	return &normalized, nil
}

func unmarshalColumn(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
