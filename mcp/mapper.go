package mcp

import (
	"net/url"
	"strings"
	"time"

	"reader-mcp/reader"
	"reader-mcp/reader/vo"
)

const resourcePrefix = "reader://documents"

// queryFromArgs validates the list_documents tool arguments and maps them
// into the canonical query. Unknown argument keys never reach this point,
// the typed handler drops them during unmarshalling.
func queryFromArgs(args ListDocumentsRequest) (vo.Query, error) {
	var query vo.Query
	if args.Location != "" {
		loc, err := parseLocation(args.Location)
		if err != nil {
			return vo.Query{}, err
		}
		query.Location = loc
	}
	if args.UpdatedAfter != "" {
		ts, err := parseInstant("updatedAfter", args.UpdatedAfter)
		if err != nil {
			return vo.Query{}, err
		}
		query.UpdatedAfter = ts
	}
	query.WithContent = args.WithContent
	query.PageCursor = args.PageCursor
	return query, nil
}

// queryFromURI maps a documents resource URI of the form
// reader://documents/location={location};after={after} into the canonical
// query. Segment values are URL-path-escaped; an absent or empty segment
// means the filter is not applied.
func queryFromURI(uri string) (vo.Query, error) {
	rest, ok := strings.CutPrefix(uri, resourcePrefix)
	if !ok {
		return vo.Query{}, reader.Errorf(reader.KindValidation, "unsupported resource uri %q", uri)
	}

	var query vo.Query
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return query, nil
	}

	for _, segment := range strings.Split(rest, ";") {
		if segment == "" {
			continue
		}
		key, raw, found := strings.Cut(segment, "=")
		if !found {
			return vo.Query{}, reader.Errorf(reader.KindValidation, "malformed uri segment %q, want key=value", segment)
		}
		value, err := url.PathUnescape(raw)
		if err != nil {
			return vo.Query{}, reader.Errorf(reader.KindValidation, "malformed uri segment %q: %v", segment, err)
		}
		if value == "" {
			continue
		}
		switch key {
		case "location":
			loc, err := parseLocation(value)
			if err != nil {
				return vo.Query{}, err
			}
			query.Location = loc
		case "after":
			ts, err := parseInstant("after", value)
			if err != nil {
				return vo.Query{}, err
			}
			query.UpdatedAfter = ts
		}
		// unknown segments are ignored, like unknown tool arguments
	}
	return query, nil
}

func parseLocation(s string) (vo.Location, error) {
	loc := vo.Location(s)
	if !loc.Valid() {
		return "", reader.Errorf(reader.KindValidation,
			"invalid location %q, supported values are new, later, shortlist, archive and feed", s)
	}
	return loc, nil
}

func parseInstant(field, s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, reader.Errorf(reader.KindValidation,
			"invalid %s %q, expected an ISO 8601 timestamp like 2025-01-01T00:00:00Z", field, s)
	}
	return ts, nil
}
