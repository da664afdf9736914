package execution

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// contentText flattens MCP content blocks into text. Non-text blocks are
// represented by a short placeholder so results stay printable and storable.
func contentText(contents []mcp.Content) string {
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		if text, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, text.Text)
			continue
		}
		switch v := c.(type) {
		case mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", v.MIMEType))
		case mcp.EmbeddedResource:
			parts = append(parts, resourceText([]mcp.ResourceContents{v.Resource}))
		default:
			parts = append(parts, fmt.Sprintf("[%T]", c))
		}
	}
	return strings.Join(parts, "\n")
}

func resourceText(contents []mcp.ResourceContents) string {
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		if text, ok := mcp.AsTextResourceContents(c); ok {
			parts = append(parts, text.Text)
			continue
		}
		if blob, ok := c.(mcp.BlobResourceContents); ok {
			parts = append(parts, fmt.Sprintf("[blob %s %s, %d bytes base64]", blob.URI, blob.MIMEType, len(blob.Blob)))
			continue
		}
		parts = append(parts, fmt.Sprintf("[%T]", c))
	}
	return strings.Join(parts, "\n")
}

// PromptMessage is the stored form of a rendered prompt message.
type PromptMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func promptMessages(result *mcp.GetPromptResult) []PromptMessage {
	messages := make([]PromptMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		messages = append(messages, PromptMessage{
			Role: string(m.Role),
			Text: contentText([]mcp.Content{m.Content}),
		})
	}
	return messages
}
