package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UpdateStoryRequest carries a partial story update. Nil fields are left untouched.
type UpdateStoryRequest struct {
	Answers           *StructuredAnswers `json:"answers,omitempty"`
	SelectedDraftText *string            `json:"selected_draft_text,omitempty"`
	FavoriteQuotes    *[]string          `json:"favorite_quotes,omitempty"`
	Title             *string            `json:"title,omitempty"`
	CoverImageRef     *string            `json:"cover_image_ref,omitempty"`
	Typography        *string            `json:"typography,omitempty"`
}

// AddTimelineEventRequest carries a new timeline event.
type AddTimelineEventRequest struct {
	Title       string     `json:"title" validate:"required,min=1"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	ImageRef    string     `json:"image_ref,omitempty" validate:"omitempty,uri"`
	Category    string     `json:"category,omitempty"`
}

// Event converts the request into a TimelineEvent with a fresh ID and the
// category default applied.
func (r *AddTimelineEventRequest) Event() TimelineEvent {
	category := r.Category
	if category == "" {
		category = DefaultTimelineCategory
	}
	return TimelineEvent{
		ID:          uuid.New(),
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		ImageRef:    r.ImageRef,
		Category:    category,
	}
}

// GenerateDraftRequest asks the AI producer for a new draft in a given style.
type GenerateDraftRequest struct {
	Style string `json:"style,omitempty"`
}

// Validate validates the AddTimelineEventRequest using the validator.
func (r *AddTimelineEventRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
