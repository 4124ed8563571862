package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ermekov/club-table-reservation/internal/model"
)

const geminiModel = "gemini-2.0-flash"

// GeminiFilter screens the menu for a guest's allergies by asking
// Gemini. Answers are constrained to the catalog's own item names, so
// a hallucinated dish can never reach the guest.
type GeminiFilter struct {
	client *genai.Client
	log    *zap.Logger
}

// NewGeminiFilter builds a filter backed by the Gemini API. Returns an
// error when the client cannot be constructed; callers treat a nil
// filter as "local filtering only".
func NewGeminiFilter(ctx context.Context, apiKey string, log *zap.Logger) (*GeminiFilter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiFilter{client: client, log: log}, nil
}

// Filter asks Gemini which menu items are safe given the allergy list
// and returns the safe localized names. The response is validated
// against the catalog; anything unrecognized is dropped.
func (g *GeminiFilter) filter(ctx context.Context, items []Item, lang model.Language, allergies []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("You filter a restaurant menu for a guest with allergies.\n")
	sb.WriteString("Menu items with ingredients:\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s: %s\n", itemName(item, lang), strings.Join(item.Ingredients, ", "))
	}
	fmt.Fprintf(&sb, "Guest allergies: %s.\n", strings.Join(allergies, ", "))
	sb.WriteString("Reply with only the safe item names, comma separated, nothing else.")

	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(sb.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	answer := resp.Text()

	known := make(map[string]string, len(items))
	for _, item := range items {
		known[strings.ToLower(itemName(item, lang))] = itemName(item, lang)
	}
	var out []string
	for _, part := range strings.Split(answer, ",") {
		if name, ok := known[strings.ToLower(strings.TrimSpace(part))]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// Filter returns allergy-safe item names. With no allergies the whole
// menu qualifies. Gemini is consulted when configured; any failure
// falls back to the local ingredient filter so the guest always gets
// an answer.
func (c *Catalog) Filter(ctx context.Context, lang model.Language, allergies []string) []string {
	if len(allergies) == 0 {
		return c.FilterLocal(lang, nil)
	}
	if c.gemini != nil {
		names, err := c.gemini.filter(ctx, c.items, lang, allergies)
		if err == nil {
			return names
		}
		if c.gemini.log != nil {
			c.gemini.log.Warn("gemini filter failed, using local filter", zap.Error(err))
		}
	}
	return c.FilterLocal(lang, allergies)
}
