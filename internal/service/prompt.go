package service

import (
	"fmt"

	"github.com/Strob0t/VoyageMind/internal/domain/persona"
	"github.com/Strob0t/VoyageMind/internal/port/prompt"
)

// PromptRenderer produces the system and user prompt for one persona call.
type PromptRenderer struct {
	store prompt.Store
}

// NewPromptRenderer creates a PromptRenderer over store.
func NewPromptRenderer(store prompt.Store) *PromptRenderer {
	return &PromptRenderer{store: store}
}

// Render loads the persona's system prompt and renders its user template.
// Errors keep their template kind.
func (r *PromptRenderer) Render(p persona.Persona, bindings map[string]any) (system, user string, err error) {
	system, err = r.store.LoadSystemPrompt(p.SystemPrompt)
	if err != nil {
		return "", "", fmt.Errorf("system prompt: %w", err)
	}
	user, err = r.store.RenderUserPrompt(p.Template, bindings)
	if err != nil {
		return "", "", fmt.Errorf("user prompt: %w", err)
	}
	return system, user, nil
}
