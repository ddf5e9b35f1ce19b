package mcp

import (
	"time"

	"reader-mcp/reader/vo"
)

// DocumentEntry is the outward representation of one Reader document.
// Content is only populated when the caller asked for it.
type DocumentEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Location string `json:"location,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ListDocumentsResponse is the outward payload for both the list tool and
// the documents resource. NextPageCursor is absent once the listing is
// exhausted.
type ListDocumentsResponse struct {
	Documents      []DocumentEntry `json:"documents"`
	NextPageCursor string          `json:"nextPageCursor,omitempty"`
}

func shapeDocument(doc vo.Document, withContent bool) DocumentEntry {
	entry := DocumentEntry{
		ID:       doc.ID,
		Title:    doc.Title,
		URL:      doc.URL,
		Location: doc.Location,
		Summary:  doc.Summary,
	}
	if doc.UpdatedAt != nil {
		entry.Updated = doc.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if withContent {
		entry.Content = doc.HTMLContent
	}
	return entry
}

func shapeResult(result *vo.Result, withContent bool) ListDocumentsResponse {
	entries := make([]DocumentEntry, len(result.Documents))
	for i, doc := range result.Documents {
		entries[i] = shapeDocument(doc, withContent)
	}
	return ListDocumentsResponse{Documents: entries, NextPageCursor: result.NextPageCursor}
}
