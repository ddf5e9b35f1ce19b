package reader

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// RenderMarkdown converts a document's HTML content to markdown.
func RenderMarkdown(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", Errorf(KindMalformed, "cannot convert document content to markdown: %v", err)
	}
	return markdown, nil
}
