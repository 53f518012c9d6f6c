// Package prompt defines the port for prompt template storage.
package prompt

// Store loads persona system prompts and renders user prompt templates.
// Missing resources fail with domain.ErrTemplateNotFound; templates that
// cannot be executed fail with domain.ErrTemplateRender.
type Store interface {
	LoadSystemPrompt(name string) (string, error)
	RenderUserPrompt(templateName string, bindings map[string]any) (string, error)
}
