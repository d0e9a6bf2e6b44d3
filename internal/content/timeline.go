package content

import (
	"math"
	"sort"
	"time"

	"github.com/maren/memoir-builder/internal/types"
)

// UndatedPlacement is the named policy for where events without a date sort.
type UndatedPlacement int

const (
	// UndatedFirst treats a missing date as the epoch origin, so undated
	// events sort ahead of any event dated after 1970. This preserves the
	// long-standing export behavior; flip the compiler to UndatedLast if
	// that quirk is ever revised.
	UndatedFirst UndatedPlacement = iota
	// UndatedLast sorts events without a date after all dated events.
	UndatedLast
)

// TimelineSectionLabel is the fixed heading renderers place above the timeline.
const TimelineSectionLabel = "Timeline of Major Events"

// UnknownDateLabel stands in for a missing date in a timeline block heading.
const UnknownDateLabel = "Unknown date"

// timelineDateLayout is the human-readable calendar form used in headings.
const timelineDateLayout = "January 2, 2006"

// NormalizeTimeline returns the events in ascending date order under the given
// undated placement. The sort is stable: ties, including events that are all
// undated, keep their input order. No events are dropped or duplicated.
func NormalizeTimeline(events []types.TimelineEvent, placement UndatedPlacement) []types.TimelineEvent {
	ordered := make([]types.TimelineEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sortKey(ordered[i].Date, placement) < sortKey(ordered[j].Date, placement)
	})
	return ordered
}

func sortKey(date *time.Time, placement UndatedPlacement) int64 {
	if date == nil {
		if placement == UndatedLast {
			return math.MaxInt64
		}
		return 0 // epoch origin
	}
	return date.UnixMilli()
}

// TimelineBlocks renders ordered events into timeline blocks, one per event.
func TimelineBlocks(events []types.TimelineEvent) []TimelineBlock {
	blocks := make([]TimelineBlock, len(events))
	for i, event := range events {
		blocks[i] = TimelineBlock{
			Heading: formatEventDate(event.Date) + " — " + event.Title,
			Body:    event.Description,
		}
	}
	return blocks
}

func formatEventDate(date *time.Time) string {
	if date == nil {
		return UnknownDateLabel
	}
	return date.Format(timelineDateLayout)
}
