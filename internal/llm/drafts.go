package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/maren/memoir-builder/internal/types"
)

// Placeholder draft bodies. A generation failure must never abort the
// request; the user instead sees why no draft appeared.
const (
	// PlaceholderUnavailable is stored when the AI producer errors.
	PlaceholderUnavailable = "Unable to access the AI generator at this time. Please try again later or refine your story manually."
	// PlaceholderNoKey is stored when no API key is configured.
	PlaceholderNoKey = "GEMINI_API_KEY not configured. Please add your API key to generate AI-powered drafts."
)

// styleGuidance maps each draft style to its writing instruction.
var styleGuidance = map[types.DraftStyle]string{
	types.StyleEmotional:    "Write with heartfelt language, vivid emotions, and reflective tone.",
	types.StyleProfessional: "Write with a polished, structured, and inspiring yet formal tone.",
	types.StyleSimple:       "Write in clear, concise language with an approachable tone.",
	types.StylePoetic:       "Write with lyrical descriptions, metaphors, and rhythmic cadence.",
}

// Producer generates narrative drafts from structured answers. A nil client
// means no API key was configured; Generate then returns the no-key
// placeholder instead of failing.
type Producer struct {
	client Client
}

// NewProducer creates a draft producer over an LLM client. client may be nil.
func NewProducer(client Client) *Producer {
	return &Producer{client: client}
}

// Generate produces one draft in the requested style. It never returns an
// error for upstream failures: the placeholder text is substituted so the
// caller can store and show it like any other draft.
func (p *Producer) Generate(ctx context.Context, style types.DraftStyle, answers types.StructuredAnswers) string {
	if p.client == nil {
		return PlaceholderNoKey
	}

	text, err := p.client.GenerateContent(ctx, BuildPrompt(style, answers))
	if err != nil {
		log.Printf("[DRAFT] generation failed: %v", err)
		return PlaceholderUnavailable
	}
	return text
}

// BuildPrompt constructs the generation prompt from the structured answers.
func BuildPrompt(style types.DraftStyle, answers types.StructuredAnswers) string {
	info := answers.PersonalInformation
	labeled := []struct{ label, body string }{
		{"Personal Information", fmt.Sprintf("Name: %s. DOB: %s. Birthplace: %s. Background: %s.",
			info.FullName, info.DOB, info.Birthplace, info.Background)},
		{"Childhood Memories", answers.ChildhoodMemories},
		{"Education Journey", answers.EducationJourney},
		{"Career & Achievements", answers.CareerAchievements},
		{"Family & Relationships", answers.FamilyRelationships},
		{"Life Challenges & Lessons", answers.LifeChallengesLessons},
		{"Dreams, Beliefs & Future Goals", answers.DreamsBeliefsFutureGoals},
	}

	var sb strings.Builder
	sb.WriteString("Transform the following autobiographical data into a cohesive life story.\n")
	sb.WriteString(fmt.Sprintf("Style requested: %s.\n", style))
	sb.WriteString(fmt.Sprintf("Writing guidance: %s\n\nData:\n", guidanceFor(style)))
	for _, s := range labeled {
		sb.WriteString(fmt.Sprintf("%s: %s\n\n", s.label, s.body))
	}
	sb.WriteString("Structure the story with chapters, engaging transitions, and a compelling introduction and conclusion.")
	return sb.String()
}

func guidanceFor(style types.DraftStyle) string {
	if g, ok := styleGuidance[style]; ok {
		return g
	}
	return styleGuidance[types.StyleSimple]
}
