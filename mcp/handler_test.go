package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reader-mcp/reader"
	"reader-mcp/reader/vo"
)

func newUpstreamClient(t *testing.T, handler http.HandlerFunc) *reader.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := reader.New(reader.Config{AccessToken: "test-token", BaseURL: srv.URL}, srv.Client(), nil)
	require.NoError(t, err)
	return client
}

func callToolRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeFailure(t *testing.T, result *mcp.CallToolResult) failurePayload {
	t.Helper()
	require.True(t, result.IsError)
	var payload failurePayload
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func TestNewServer(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(vo.Page{})
	})
	s := NewServer(zap.NewNop(), client, Options{})
	if s == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestListDocumentsEndToEnd(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "later", r.URL.Query().Get("location"))
		json.NewEncoder(w).Encode(vo.Page{
			Count: 2,
			Results: []vo.Document{
				{ID: "doc-1", URL: "https://example.com/1", Title: "One", Location: "later", HTMLContent: "<p>one</p>"},
				{ID: "doc-2", URL: "https://example.com/2", Title: "Two", Location: "later", HTMLContent: "<p>two</p>"},
			},
		})
	})

	handler := getListDocumentsHandler(zap.NewNop(), client)
	args := ListDocumentsRequest{Location: "later"}
	result, err := handler(context.Background(), callToolRequest("list_documents", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	body := resultText(t, result)
	var response ListDocumentsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &response))
	require.Len(t, response.Documents, 2)
	assert.Equal(t, "doc-1", response.Documents[0].ID)
	assert.Empty(t, response.NextPageCursor)
	assert.NotContains(t, body, `"content"`)
}

func TestListDocumentsReturnsCursor(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		// a single page is fetched even though more data exists
		require.Empty(t, r.URL.Query().Get("pageCursor"))
		json.NewEncoder(w).Encode(vo.Page{
			Results:        []vo.Document{{ID: "doc-1", URL: "https://example.com/1", Title: "One"}},
			NextPageCursor: "cur-2",
		})
	})

	handler := getListDocumentsHandler(zap.NewNop(), client)
	args := ListDocumentsRequest{}
	result, err := handler(context.Background(), callToolRequest("list_documents", args), args)
	require.NoError(t, err)

	var response ListDocumentsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "cur-2", response.NextPageCursor)
}

func TestListDocumentsValidationFailure(t *testing.T) {
	called := false
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := getListDocumentsHandler(zap.NewNop(), client)
	args := ListDocumentsRequest{Location: "trash"}
	result, err := handler(context.Background(), callToolRequest("list_documents", args), args)
	require.NoError(t, err)

	payload := decodeFailure(t, result)
	assert.Equal(t, "validation", payload.Kind)
	assert.Contains(t, payload.Message, "trash")
	assert.False(t, called, "invalid input must not reach the upstream")
}

func TestListDocumentsAuthFailure(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	handler := getListDocumentsHandler(zap.NewNop(), client)
	args := ListDocumentsRequest{}
	result, err := handler(context.Background(), callToolRequest("list_documents", args), args)
	require.NoError(t, err)

	payload := decodeFailure(t, result)
	assert.Equal(t, "auth", payload.Kind)
}

func TestListDocumentsRateLimitHint(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	handler := getListDocumentsHandler(zap.NewNop(), client)
	args := ListDocumentsRequest{}
	result, err := handler(context.Background(), callToolRequest("list_documents", args), args)
	require.NoError(t, err)

	payload := decodeFailure(t, result)
	assert.Equal(t, "rate-limited", payload.Kind)
	assert.Equal(t, 42, payload.RetryAfter)
}

func TestDocumentsResourceEndToEnd(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "archive", q.Get("location"))
		require.Equal(t, "2025-01-01T00:00:00Z", q.Get("updatedAfter"))

		switch q.Get("pageCursor") {
		case "":
			json.NewEncoder(w).Encode(vo.Page{
				Results:        []vo.Document{{ID: "doc-1", URL: "https://example.com/1", Title: "One"}},
				NextPageCursor: "cur-1",
			})
		case "cur-1":
			json.NewEncoder(w).Encode(vo.Page{
				Results: []vo.Document{{ID: "doc-2", URL: "https://example.com/2", Title: "Two"}},
			})
		default:
			t.Errorf("unexpected cursor %q", q.Get("pageCursor"))
		}
	})

	handler := getDocumentsResourceHandler(zap.NewNop(), client, DefaultMaxDocuments)
	uri := "reader://documents/location=archive;after=2025-01-01T00:00:00Z"
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, uri, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var response ListDocumentsResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &response))
	require.Len(t, response.Documents, 2)
	assert.Equal(t, "doc-1", response.Documents[0].ID)
	assert.Equal(t, "doc-2", response.Documents[1].ID)
	assert.Empty(t, response.NextPageCursor)
}

func TestDocumentsResourceFailurePropagation(t *testing.T) {
	calls := 0
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(vo.Page{
				Results:        []vo.Document{{ID: "doc-1", URL: "https://example.com/1", Title: "One"}},
				NextPageCursor: "cur-1",
			})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	handler := getDocumentsResourceHandler(zap.NewNop(), client, DefaultMaxDocuments)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "reader://documents"},
	})
	require.Nil(t, contents, "no partial listing on mid-walk failure")

	var rerr *reader.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, reader.KindUnavailable, rerr.Kind)
	assert.Equal(t, 2, calls)
}

func TestUpdateDocumentHandler(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/update/doc-1/", r.URL.Path)

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		require.Equal(t, map[string]any{"location": "archive"}, patch)

		json.NewEncoder(w).Encode(vo.Document{ID: "doc-1", URL: "https://example.com/1", Title: "One", Location: "archive"})
	})

	handler := getUpdateDocumentHandler(zap.NewNop(), client)
	args := UpdateDocumentRequest{ID: "doc-1", Location: "archive"}
	result, err := handler(context.Background(), callToolRequest("update_document", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response UpdateDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "archive", response.Document.Location)
}

func TestUpdateDocumentValidation(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})
	handler := getUpdateDocumentHandler(zap.NewNop(), client)

	args := UpdateDocumentRequest{Location: "archive"}
	result, err := handler(context.Background(), callToolRequest("update_document", args), args)
	require.NoError(t, err)
	assert.Equal(t, "validation", decodeFailure(t, result).Kind)

	args = UpdateDocumentRequest{ID: "doc-1"}
	result, err = handler(context.Background(), callToolRequest("update_document", args), args)
	require.NoError(t, err)
	payload := decodeFailure(t, result)
	assert.Equal(t, "validation", payload.Kind)
	assert.Contains(t, payload.Message, "no fields")

	args = UpdateDocumentRequest{ID: "doc-1", Location: "trash"}
	result, err = handler(context.Background(), callToolRequest("update_document", args), args)
	require.NoError(t, err)
	assert.Equal(t, "validation", decodeFailure(t, result).Kind)
}

func TestReadDocumentHandler(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "doc-1", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode(vo.Page{
			Count: 1,
			Results: []vo.Document{{
				ID:          "doc-1",
				URL:         "https://example.com/1",
				Title:       "One",
				HTMLContent: "<h1>Heading</h1><p>Some <strong>bold</strong> text.</p>",
			}},
		})
	})

	handler := getReadDocumentHandler(zap.NewNop(), client)
	args := ReadDocumentRequest{ID: "doc-1"}
	result, err := handler(context.Background(), callToolRequest("read_document", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response ReadDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "doc-1", response.ID)
	assert.Contains(t, response.Markdown, "# Heading")
	assert.Contains(t, response.Markdown, "**bold**")
}
