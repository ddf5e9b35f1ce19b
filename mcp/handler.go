package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"reader-mcp/reader"
)

const Version = "0.1.0"

// DefaultMaxDocuments caps how many documents a resource read accumulates
// while following pagination cursors.
const DefaultMaxDocuments = 1000

var locationValues = []string{"new", "later", "shortlist", "archive", "feed"}

type ListDocumentsRequest struct {
	Location     string `json:"location,omitempty"`     // Folder filter
	UpdatedAfter string `json:"updatedAfter,omitempty"` // ISO 8601 lower bound on update time
	WithContent  bool   `json:"withContent,omitempty"`  // Include HTML content
	PageCursor   string `json:"pageCursor,omitempty"`   // Opaque pagination cursor
}

type UpdateDocumentRequest struct {
	ID       string `json:"id"`                 // The document to update
	Location string `json:"location,omitempty"` // Move the document to this folder
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

type UpdateDocumentResponse struct {
	Document DocumentEntry `json:"document"`
}

type ReadDocumentRequest struct {
	ID string `json:"id"` // The document to read
}

type ReadDocumentResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"` // Document content converted from HTML
}

// Options configures the MCP server.
type Options struct {
	// MaxDocuments bounds FollowAll accumulation for resource reads.
	// Zero means DefaultMaxDocuments.
	MaxDocuments int
}

// NewServer creates the Reader MCP server with the list_documents,
// update_document and read_document tools and the documents resource
// template.
func NewServer(logger *zap.Logger, api reader.API, opts Options) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = DefaultMaxDocuments
	}

	s := server.NewMCPServer(
		"Reader API MCP",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("Get the document list via the Reader API"),
		mcp.WithString("location",
			mcp.Description("The folder where the document is located, supports 'new', 'later', 'shortlist', 'archive', 'feed'"),
			mcp.Enum(locationValues...),
		),
		mcp.WithString("updatedAfter",
			mcp.Description("Filter by update time (ISO8601)"),
		),
		mcp.WithBoolean("withContent",
			mcp.Description("Whether to include HTML content"),
			mcp.DefaultBool(false),
		),
		mcp.WithString("pageCursor",
			mcp.Description("Pagination cursor returned by a previous call"),
		),
	)
	s.AddTool(listTool, mcp.NewTypedToolHandler(getListDocumentsHandler(logger, api)))

	updateTool := mcp.NewTool("update_document",
		mcp.WithDescription("Update fields of a single Reader document"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The document identifier"),
		),
		mcp.WithString("location",
			mcp.Description("Move the document to this folder"),
			mcp.Enum(locationValues...),
		),
		mcp.WithString("title",
			mcp.Description("New document title"),
		),
		mcp.WithString("author",
			mcp.Description("New document author"),
		),
		mcp.WithString("summary",
			mcp.Description("New document summary"),
		),
	)
	s.AddTool(updateTool, mcp.NewTypedToolHandler(getUpdateDocumentHandler(logger, api)))

	readTool := mcp.NewTool("read_document",
		mcp.WithDescription("Read a single document's content as markdown"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The document identifier"),
		),
	)
	s.AddTool(readTool, mcp.NewTypedToolHandler(getReadDocumentHandler(logger, api)))

	addDocumentsResource(s, logger, api, opts.MaxDocuments)

	return s
}

func getListDocumentsHandler(logger *zap.Logger, api reader.API) func(ctx context.Context, request mcp.CallToolRequest, args ListDocumentsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ListDocumentsRequest) (*mcp.CallToolResult, error) {
		logger.Info("tool list_documents",
			zap.String("location", args.Location),
			zap.String("updatedAfter", args.UpdatedAfter),
			zap.Bool("withContent", args.WithContent),
			zap.Bool("hasCursor", args.PageCursor != ""))

		query, err := queryFromArgs(args)
		if err != nil {
			return toolError(logger, err), nil
		}

		result, err := reader.Walk(ctx, api, query, reader.SinglePage, 0)
		if err != nil {
			return toolError(logger, err), nil
		}

		return toolJSON(shapeResult(result, args.WithContent))
	}
}

func getUpdateDocumentHandler(logger *zap.Logger, api reader.API) func(ctx context.Context, request mcp.CallToolRequest, args UpdateDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args UpdateDocumentRequest) (*mcp.CallToolResult, error) {
		logger.Info("tool update_document", zap.String("id", args.ID))

		if args.ID == "" {
			return toolError(logger, reader.Errorf(reader.KindValidation, "id is required")), nil
		}

		patch := map[string]any{}
		if args.Location != "" {
			loc, err := parseLocation(args.Location)
			if err != nil {
				return toolError(logger, err), nil
			}
			patch["location"] = string(loc)
		}
		if args.Title != "" {
			patch["title"] = args.Title
		}
		if args.Author != "" {
			patch["author"] = args.Author
		}
		if args.Summary != "" {
			patch["summary"] = args.Summary
		}
		if len(patch) == 0 {
			return toolError(logger, reader.Errorf(reader.KindValidation, "no fields to update")), nil
		}

		doc, err := api.UpdateDocument(ctx, args.ID, patch)
		if err != nil {
			return toolError(logger, err), nil
		}

		return toolJSON(UpdateDocumentResponse{Document: shapeDocument(*doc, false)})
	}
}

func getReadDocumentHandler(logger *zap.Logger, api reader.API) func(ctx context.Context, request mcp.CallToolRequest, args ReadDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ReadDocumentRequest) (*mcp.CallToolResult, error) {
		logger.Info("tool read_document", zap.String("id", args.ID))

		if args.ID == "" {
			return toolError(logger, reader.Errorf(reader.KindValidation, "id is required")), nil
		}

		doc, err := api.FetchDocument(ctx, args.ID)
		if err != nil {
			return toolError(logger, err), nil
		}

		markdown, err := reader.RenderMarkdown(doc.HTMLContent)
		if err != nil {
			return toolError(logger, err), nil
		}

		return toolJSON(ReadDocumentResponse{
			ID:       doc.ID,
			Title:    doc.Title,
			URL:      doc.URL,
			Markdown: markdown,
		})
	}
}

// failurePayload mirrors reader.Error across the protocol boundary so the
// host runtime always receives a structured kind+message object.
type failurePayload struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfterSeconds,omitempty"`
}

func toolError(logger *zap.Logger, err error) *mcp.CallToolResult {
	payload := failurePayload{Kind: string(reader.KindUnavailable), Message: err.Error()}
	var rerr *reader.Error
	if errors.As(err, &rerr) {
		payload.Kind = string(rerr.Kind)
		payload.Message = rerr.Message
		payload.RetryAfter = int(rerr.RetryAfter / time.Second)
	}

	logger.Error("request failed",
		zap.String("kind", payload.Kind),
		zap.String("message", payload.Message))

	body, merr := json.Marshal(payload)
	if merr != nil {
		return mcp.NewToolResultError(payload.Message)
	}
	return mcp.NewToolResultError(string(body))
}

func toolJSON(response any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
