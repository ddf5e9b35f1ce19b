package reader

import (
	"context"

	"reader-mcp/reader/vo"
)

// Mode selects how Walk treats pagination cursors.
type Mode int

const (
	// SinglePage issues exactly one upstream call and hands the returned
	// cursor back to the caller, who paginates manually.
	SinglePage Mode = iota

	// FollowAll substitutes each returned cursor into the next call until
	// the listing is exhausted or the document limit is crossed.
	FollowAll
)

// PageFetcher is the slice of the client Walk needs.
type PageFetcher interface {
	FetchPage(ctx context.Context, query vo.Query) (*vo.Page, error)
}

// Walk drives the upstream listing for one request. Fetches are strictly
// sequential, each depending on the previous cursor, and documents keep
// their upstream order across pages.
//
// Any page failure aborts the walk and is returned as-is; accumulated
// documents are discarded rather than returned as a truncated listing.
//
// In FollowAll mode a positive limit stops the walk after the page that
// crosses it. Pages are never split, so the returned cursor is always a real
// upstream cursor and the caller can resume from it.
func Walk(ctx context.Context, fetcher PageFetcher, query vo.Query, mode Mode, limit int) (*vo.Result, error) {
	page, err := fetcher.FetchPage(ctx, query)
	if err != nil {
		return nil, err
	}
	if mode == SinglePage {
		return &vo.Result{Documents: page.Results, NextPageCursor: page.NextPageCursor}, nil
	}

	docs := page.Results
	cursor := page.NextPageCursor
	for cursor != "" && (limit <= 0 || len(docs) < limit) {
		next := query
		next.PageCursor = cursor
		page, err = fetcher.FetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		docs = append(docs, page.Results...)
		cursor = page.NextPageCursor
	}
	return &vo.Result{Documents: docs, NextPageCursor: cursor}, nil
}
