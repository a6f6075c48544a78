package ui

import "time"

// LayoutCompactWidth is the threshold below which the header drops
// secondary fields.
const LayoutCompactWidth = 80

const (
	// DraftCharLimit caps the length of a new item.
	DraftCharLimit = 500

	// NoticeTTL is how long a transient notice stays above the footer.
	NoticeTTL = 4 * time.Second
)
