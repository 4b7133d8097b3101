package llm

import (
	"context"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// SmartPath bundles prompt construction, the chat call, and the validation
// gate into the one operation the router needs.
type SmartPath struct {
	client ports.ChatClient
}

// NewSmartPath wires the smart path over a chat client.
func NewSmartPath(client ports.ChatClient) *SmartPath {
	return &SmartPath{client: client}
}

// Available reports whether the model endpoint answers its health probe.
func (s *SmartPath) Available(ctx context.Context) bool {
	return s.client.Healthy(ctx)
}

// Compact asks the model to compress text and validates the answer.
func (s *SmartPath) Compact(ctx context.Context, category domain.Category, text string) (string, error) {
	system, user := BuildPrompt(category, text)
	reply, err := s.client.Chat(ctx, system, user)
	if err != nil {
		return "", err
	}
	// Validate against the bare text, not the prompt: the prompt itself
	// contains the example the echo check looks for.
	return Validate(text, reply, category)
}

var _ ports.SmartCompactor = (*SmartPath)(nil)
