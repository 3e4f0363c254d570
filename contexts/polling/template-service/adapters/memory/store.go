package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pollsbot/contexts/polling/template-service/domain/entities"
	domainerrors "pollsbot/contexts/polling/template-service/domain/errors"
)

type Store struct {
	mu        sync.RWMutex
	templates map[string]entities.Template
}

func NewStore() *Store {
	return &Store{templates: make(map[string]entities.Template)}
}

func (s *Store) GetTemplate(_ context.Context, name string) (entities.Template, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[strings.TrimSpace(name)]
	return tpl, ok, nil
}

func (s *Store) SaveTemplate(_ context.Context, template entities.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[strings.TrimSpace(template.Name)] = template
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, strings.TrimSpace(name))
	return nil
}

func (s *Store) ListTemplates(_ context.Context) ([]entities.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	templates := make([]entities.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].UsageCount != templates[j].UsageCount {
			return templates[i].UsageCount > templates[j].UsageCount
		}
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (s *Store) IncrementUsage(_ context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[strings.TrimSpace(name)]
	if !ok {
		return 0, domainerrors.ErrTemplateNotFound
	}
	tpl.UsageCount++
	s.templates[tpl.Name] = tpl
	return tpl.UsageCount, nil
}
