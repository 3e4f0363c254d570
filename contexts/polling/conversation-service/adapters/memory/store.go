package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"pollsbot/contexts/polling/conversation-service/domain/entities"
)

// Store is the in-memory dialogue repository used by tests and local wiring.
type Store struct {
	mu        sync.RWMutex
	dialogues map[string]entities.Dialogue
}

func NewStore() *Store {
	return &Store{dialogues: make(map[string]entities.Dialogue)}
}

func (s *Store) GetDialogue(_ context.Context, userID string) (entities.Dialogue, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dialogue, ok := s.dialogues[strings.TrimSpace(userID)]
	if !ok {
		return entities.Dialogue{}, false, nil
	}
	return cloneDialogue(dialogue), true, nil
}

func (s *Store) SaveDialogue(_ context.Context, dialogue entities.Dialogue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogues[dialogue.UserID] = cloneDialogue(dialogue)
	return nil
}

func (s *Store) DeleteDialogue(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogues, strings.TrimSpace(userID))
	return nil
}

func (s *Store) ListIdleSince(_ context.Context, cutoff time.Time) ([]entities.Dialogue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var idle []entities.Dialogue
	for _, dialogue := range s.dialogues {
		if !dialogue.UpdatedAt.After(cutoff) {
			idle = append(idle, cloneDialogue(dialogue))
		}
	}
	return idle, nil
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func cloneDialogue(dialogue entities.Dialogue) entities.Dialogue {
	out := dialogue
	out.Poll.Options = append([]string(nil), dialogue.Poll.Options...)
	out.Template.Options = append([]string(nil), dialogue.Template.Options...)
	out.Instantiation.Variables = append([]string(nil), dialogue.Instantiation.Variables...)
	if dialogue.Instantiation.Bindings != nil {
		bindings := make(map[string]string, len(dialogue.Instantiation.Bindings))
		for key, value := range dialogue.Instantiation.Bindings {
			bindings[key] = value
		}
		out.Instantiation.Bindings = bindings
	}
	return out
}
