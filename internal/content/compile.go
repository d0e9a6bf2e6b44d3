package content

import (
	"fmt"
	"strings"

	"github.com/maren/memoir-builder/internal/types"
)

// DefaultTitle is used when a story has no explicit title.
const DefaultTitle = "My Autobiography"

// DraftPolicy selects which generated draft supplies the narrative when the
// user has not picked one explicitly. It returns false when no draft applies.
type DraftPolicy func(drafts []types.Draft) (string, bool)

// LastDraftWins returns the text of the most recently generated draft, by
// insertion order. It deliberately ignores style and quality; the newest
// draft is what the user saw last.
func LastDraftWins(drafts []types.Draft) (string, bool) {
	if len(drafts) == 0 {
		return "", false
	}
	return drafts[len(drafts)-1].Text, true
}

// Compiler turns story records into content models. It is stateless and safe
// for concurrent use.
type Compiler struct {
	drafts  DraftPolicy
	undated UndatedPlacement
}

// NewCompiler returns a Compiler with the standard policies: LastDraftWins
// for draft selection and UndatedFirst for timeline ordering.
func NewCompiler() *Compiler {
	return &Compiler{drafts: LastDraftWins, undated: UndatedFirst}
}

// Compile resolves a story record into a content model. It is a pure function
// of the record: identical input yields an identical model, and a fully empty
// record still compiles to a sparse but valid model. Missing optional fields
// never cause an error.
func (c *Compiler) Compile(record *types.StoryRecord) *Model {
	if record == nil {
		record = &types.StoryRecord{}
	}
	rec := record.WithDefaults()

	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = DefaultTitle
	}

	model := &Model{Title: title}

	if len(rec.FavoriteQuotes) > 0 {
		model.QuoteBlock = append([]string(nil), rec.FavoriteQuotes...)
	}

	model.NarrativeBlocks = c.narrative(rec)

	ordered := NormalizeTimeline(rec.Timeline, c.undated)
	model.TimelineBlocks = TimelineBlocks(ordered)

	return model
}

// narrative resolves the narrative source in priority order: the user-selected
// draft text, then the draft chosen by the draft policy, then the structured
// answers. Exactly one path is taken.
func (c *Compiler) narrative(rec types.StoryRecord) []NarrativeBlock {
	if strings.TrimSpace(rec.SelectedDraftText) != "" {
		return draftBlocks(rec.SelectedDraftText)
	}
	if text, ok := c.drafts(rec.GeneratedDrafts); ok {
		return draftBlocks(text)
	}
	return sectionBlocks(rec.Answers)
}

// draftBlocks splits free-form draft text on blank-line boundaries into
// headingless blocks, dropping empty ones. Line endings are normalized first
// so drafts pasted with CRLF endings split the same way.
func draftBlocks(text string) []NarrativeBlock {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	blocks := []NarrativeBlock{}
	for _, chunk := range strings.Split(text, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		blocks = append(blocks, NarrativeBlock{Text: chunk})
	}
	return blocks
}

// section pairs a fixed heading with an accessor into the structured answers.
type section struct {
	heading string
	body    func(a types.StructuredAnswers) string
}

// sections is the canonical authoring order of the story form. Every section
// appears in the compiled output regardless of content, so the structured
// fallback is always complete and deterministic.
var sections = []section{
	{"Personal Information", personalInformationBody},
	{"Childhood Memories", func(a types.StructuredAnswers) string { return a.ChildhoodMemories }},
	{"Education Journey", func(a types.StructuredAnswers) string { return a.EducationJourney }},
	{"Career & Achievements", func(a types.StructuredAnswers) string { return a.CareerAchievements }},
	{"Family & Relationships", func(a types.StructuredAnswers) string { return a.FamilyRelationships }},
	{"Life Challenges & Lessons", func(a types.StructuredAnswers) string { return a.LifeChallengesLessons }},
	{"Dreams, Beliefs & Future Goals", func(a types.StructuredAnswers) string { return a.DreamsBeliefsFutureGoals }},
}

func sectionBlocks(answers types.StructuredAnswers) []NarrativeBlock {
	blocks := make([]NarrativeBlock, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, NarrativeBlock{Heading: s.heading, Text: s.body(answers)})
	}
	return blocks
}

// personalInformationBody flattens the nested personal-information fields into
// the labeled multi-line form used by the story form. Labels are emitted even
// for empty values.
func personalInformationBody(a types.StructuredAnswers) string {
	info := a.PersonalInformation
	return fmt.Sprintf("Name: %s\nDOB: %s\nBirthplace: %s\nBackground: %s",
		info.FullName, info.DOB, info.Birthplace, info.Background)
}
