// Package prompts implements the prompt store port over embedded templates
// with an optional on-disk override directory.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"text/template"

	"github.com/Strob0t/VoyageMind/internal/domain"
)

//go:embed templates/*.tmpl templates/*.txt
var embedded embed.FS

// Store loads system prompts and renders user prompt templates. Files in the
// override directory shadow the embedded ones by name.
type Store struct {
	layers []fs.FS

	mu     sync.RWMutex
	parsed map[string]*template.Template
}

// New creates a Store. An empty dir uses only the embedded resources.
func New(dir string) *Store {
	builtin, _ := fs.Sub(embedded, "templates")
	layers := []fs.FS{builtin}
	if dir != "" {
		layers = append([]fs.FS{os.DirFS(dir)}, layers...)
	}
	return &Store{layers: layers, parsed: make(map[string]*template.Template)}
}

// LoadSystemPrompt returns the trimmed text of the named system prompt.
func (s *Store) LoadSystemPrompt(name string) (string, error) {
	data, err := s.read(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// RenderUserPrompt executes the named template with bindings. A binding the
// template references but the caller did not supply is a render error.
func (s *Store) RenderUserPrompt(templateName string, bindings map[string]any) (string, error) {
	tmpl, err := s.template(templateName)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, bindings); err != nil {
		return "", domain.NewTemplateRenderError(templateName, err)
	}
	return buf.String(), nil
}

func (s *Store) template(name string) (*template.Template, error) {
	s.mu.RLock()
	tmpl, ok := s.parsed[name]
	s.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, domain.NewTemplateRenderError(name, err)
	}

	s.mu.Lock()
	s.parsed[name] = tmpl
	s.mu.Unlock()
	return tmpl, nil
}

// read returns the first layer's copy of name.
func (s *Store) read(name string) ([]byte, error) {
	if !fs.ValidPath(name) || path.Base(name) != name {
		return nil, domain.NewTemplateNotFound(name, fs.ErrInvalid)
	}
	for _, layer := range s.layers {
		data, err := fs.ReadFile(layer, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewTemplateNotFound(name, fmt.Errorf("read: %w", err))
		}
	}
	return nil, domain.NewTemplateNotFound(name, fs.ErrNotExist)
}
