// Package suggest produces AI-written text for the note editor. It never
// fails: missing credentials and provider errors degrade to fixed messages.
package suggest

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

const (
	NotConfiguredMessage = "API key not configured. Please set the API_KEY environment variable."
	UnavailableMessage   = "Sorry, I couldn't generate content at this time. Please try again later."
)

// Generator sends a finished prompt to a text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	gen    Generator
	logger logging.Logger
}

// New returns a Client backed by gen. A nil gen means no credential is
// configured.
func New(gen Generator, logger logging.Logger) *Client {
	return &Client{gen: gen, logger: logger.With("module", "suggest")}
}

// Generate asks the model to fulfil request, taking existing note content
// into account when present.
func (c *Client) Generate(ctx context.Context, request, existing string) string {
	if c.gen == nil {
		return NotConfiguredMessage
	}

	text, err := c.gen.Generate(ctx, BuildPrompt(request, existing))
	if err != nil {
		c.logger.Error(ctx, "content generation failed", "error", err)
		return UnavailableMessage
	}
	return text
}

func BuildPrompt(request, existing string) string {
	var b strings.Builder
	b.WriteString("You are a creative assistant helping a user write notes.\n")
	b.WriteString(`The user's request is: "`)
	b.WriteString(request)
	b.WriteString("\".\n")
	if existing != "" {
		b.WriteString("The current note content is:\n---\n")
		b.WriteString(existing)
		b.WriteString("\n---\nContinue or elaborate on this.\n")
	}
	b.WriteString("Generate a concise and helpful response based on the request.")
	return b.String()
}
