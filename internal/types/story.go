// Package types provides type definitions for structured data used throughout the memoir-builder system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// DraftStyle identifies the tone requested for an AI-generated draft.
type DraftStyle string

// Supported draft styles. Unrecognized styles normalize to StyleSimple.
const (
	StyleEmotional    DraftStyle = "emotional"
	StyleProfessional DraftStyle = "professional"
	StyleSimple       DraftStyle = "simple"
	StylePoetic       DraftStyle = "poetic"
)

// NormalizeStyle maps a raw style string to a supported DraftStyle,
// falling back to StyleSimple for anything unrecognized.
func NormalizeStyle(raw string) DraftStyle {
	switch DraftStyle(raw) {
	case StyleEmotional, StyleProfessional, StyleSimple, StylePoetic:
		return DraftStyle(raw)
	default:
		return StyleSimple
	}
}

// TypographyKey is an enumerated cosmetic font selection. Each renderer maps
// it independently to its own typeface system.
type TypographyKey string

// Supported typography keys.
const (
	TypographyInter        TypographyKey = "inter"
	TypographyPlayfair     TypographyKey = "playfair"
	TypographyMerriweather TypographyKey = "merriweather"
	TypographyLora         TypographyKey = "lora"
	TypographySourceSerif  TypographyKey = "source-serif"
)

// DefaultTypography is used when a story has no typography set or the stored
// key is not recognized.
const DefaultTypography = TypographyInter

// NormalizeTypography maps a raw key to a supported TypographyKey,
// falling back to DefaultTypography.
func NormalizeTypography(raw string) TypographyKey {
	switch TypographyKey(raw) {
	case TypographyInter, TypographyPlayfair, TypographyMerriweather, TypographyLora, TypographySourceSerif:
		return TypographyKey(raw)
	default:
		return DefaultTypography
	}
}

// PersonalInformation holds the nested fields of the personal-information section.
type PersonalInformation struct {
	FullName   string `json:"full_name,omitempty"`
	DOB        string `json:"dob,omitempty"`
	Birthplace string `json:"birthplace,omitempty"`
	Background string `json:"background,omitempty"`
}

// StructuredAnswers holds the fixed-schema Q&A fields authored directly in the
// story form, independent of AI generation. Every field is optional; an absent
// field is the zero value.
type StructuredAnswers struct {
	PersonalInformation      PersonalInformation `json:"personal_information,omitempty"`
	ChildhoodMemories        string              `json:"childhood_memories,omitempty"`
	EducationJourney         string              `json:"education_journey,omitempty"`
	CareerAchievements       string              `json:"career_achievements,omitempty"`
	FamilyRelationships      string              `json:"family_relationships,omitempty"`
	LifeChallengesLessons    string              `json:"life_challenges_lessons,omitempty"`
	DreamsBeliefsFutureGoals string              `json:"dreams_beliefs_future_goals,omitempty"`
}

// Draft is one AI-generated narrative attempt. Drafts are append-only:
// insertion order is generation order and is never reordered or deduplicated.
type Draft struct {
	Style     DraftStyle `json:"style"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// DefaultTimelineCategory is assigned to timeline events created without a category.
const DefaultTimelineCategory = "general"

// TimelineEvent is a single life event on the story timeline.
// Events carry no inherent order; ordering is applied at compile time.
type TimelineEvent struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title" validate:"required,min=1"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	ImageRef    string     `json:"image_ref,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// StoryRecord is the persisted autobiographical record for one owner.
// The content compiler only reads it.
type StoryRecord struct {
	OwnerID           uuid.UUID         `json:"owner_id,omitempty"`
	Answers           StructuredAnswers `json:"answers"`
	GeneratedDrafts   []Draft           `json:"generated_drafts,omitempty"`
	SelectedDraftText string            `json:"selected_draft_text,omitempty"`
	Timeline          []TimelineEvent   `json:"timeline,omitempty"`
	FavoriteQuotes    []string          `json:"favorite_quotes,omitempty"`
	Title             string            `json:"title,omitempty"`
	CoverImageRef     string            `json:"cover_image_ref,omitempty"`
	Typography        TypographyKey     `json:"typography,omitempty"`
	ShareSlug         string            `json:"share_slug,omitempty"`
	CreatedAt         time.Time         `json:"created_at,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at,omitempty"`
}

// WithDefaults returns a copy of the record with every defaultable field
// filled in: typography normalized and timeline categories set. Downstream
// components never branch on field presence; this runs once at the compiler
// and store boundaries.
func (r StoryRecord) WithDefaults() StoryRecord {
	r.Typography = NormalizeTypography(string(r.Typography))
	if len(r.Timeline) > 0 {
		events := make([]TimelineEvent, len(r.Timeline))
		copy(events, r.Timeline)
		for i := range events {
			if events[i].Category == "" {
				events[i].Category = DefaultTimelineCategory
			}
		}
		r.Timeline = events
	}
	return r
}
