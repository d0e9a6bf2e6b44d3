// Package content compiles a story record into the renderer-agnostic content
// model consumed by every export format and the public share view.
package content

// Model is the fully resolved document produced by compilation. It is built
// fresh on every Compile call and carries no persisted identity.
type Model struct {
	Title           string           `json:"title"`
	QuoteBlock      []string         `json:"quote_block,omitempty"`
	NarrativeBlocks []NarrativeBlock `json:"narrative_blocks"`
	TimelineBlocks  []TimelineBlock  `json:"timeline_blocks"`
}

// NarrativeBlock is one paragraph or section of the resolved narrative.
// Heading is empty for blocks split out of free-form draft text.
type NarrativeBlock struct {
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text"`
}

// TimelineBlock is one rendered timeline entry.
type TimelineBlock struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}
