package vo

import "time"

// Location is the Reader folder a document lives in.
type Location string

const (
	LocationNew       Location = "new"
	LocationLater     Location = "later"
	LocationShortlist Location = "shortlist"
	LocationArchive   Location = "archive"
	LocationFeed      Location = "feed"
)

// Valid reports whether the location is one of the folders the Reader API
// accepts as a list filter.
func (l Location) Valid() bool {
	switch l {
	case LocationNew, LocationLater, LocationShortlist, LocationArchive, LocationFeed:
		return true
	}
	return false
}

// Query is the canonical, already-validated request against the document
// listing. Zero values mean "filter not applied". One Query is built per
// inbound request and never mutated afterwards; the pagination walker copies
// it when substituting cursors.
type Query struct {
	Location     Location
	UpdatedAfter time.Time
	WithContent  bool
	PageCursor   string
}

// Document is one record from the Reader library, with the upstream field
// set passed through as-is.
type Document struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`

	SourceURL     string         `json:"source_url,omitempty"`
	Author        string         `json:"author,omitempty"`
	Source        string         `json:"source,omitempty"`
	Category      string         `json:"category,omitempty"`
	Location      string         `json:"location,omitempty"`
	Tags          map[string]any `json:"tags,omitempty"`
	SiteName      string         `json:"site_name,omitempty"`
	WordCount     int            `json:"word_count,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	PublishedDate string         `json:"published_date,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	HTMLContent   string         `json:"html_content,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	ParentID      string         `json:"parent_id,omitempty"`

	ReadingProgress float64    `json:"reading_progress,omitempty"`
	FirstOpenedAt   *time.Time `json:"first_opened_at,omitempty"`
	LastOpenedAt    *time.Time `json:"last_opened_at,omitempty"`

	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	SavedAt     *time.Time `json:"saved_at,omitempty"`
	LastMovedAt *time.Time `json:"last_moved_at,omitempty"`
}

// Page is one response from the listing endpoint. A Page without a
// NextPageCursor is terminal.
type Page struct {
	Count          int        `json:"count"`
	Results        []Document `json:"results"`
	NextPageCursor string     `json:"nextPageCursor,omitempty"`
}

// Result is the aggregate of one or more Pages. NextPageCursor is the final
// unconsumed cursor, empty once the listing is exhausted.
type Result struct {
	Documents      []Document
	NextPageCursor string
}
