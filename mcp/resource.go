package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"reader-mcp/reader"
)

// documentsTemplate is the advertised URI shape for the documents resource.
// Clients expanding it with unset variables produce empty segment values,
// which the mapper treats as "filter not applied".
const documentsTemplate = resourcePrefix + "/location={location};after={after}"

func addDocumentsResource(s *server.MCPServer, logger *zap.Logger, api reader.API, maxDocuments int) {
	template := mcp.NewResourceTemplate(
		documentsTemplate,
		"Reader documents",
		mcp.WithTemplateDescription("Complete filtered document listing from the Reader library"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(template, getDocumentsResourceHandler(logger, api, maxDocuments))
}

// getDocumentsResourceHandler resolves a documents URI by following
// pagination to exhaustion, so the resource delivers the complete filtered
// set in one read.
func getDocumentsResourceHandler(logger *zap.Logger, api reader.API, maxDocuments int) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		logger.Info("resource documents", zap.String("uri", uri))

		query, err := queryFromURI(uri)
		if err != nil {
			logger.Error("resource read failed", zap.String("uri", uri), zap.Error(err))
			return nil, err
		}

		result, err := reader.Walk(ctx, api, query, reader.FollowAll, maxDocuments)
		if err != nil {
			logger.Error("resource read failed", zap.String("uri", uri), zap.Error(err))
			return nil, err
		}

		body, err := json.Marshal(shapeResult(result, query.WithContent))
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	}
}
