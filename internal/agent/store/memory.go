package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"fieldforce/internal/agent/models"
	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
)

// InMemory stores agents in process memory. Values are cloned on the way in and out.
type InMemory struct {
	mu          sync.RWMutex
	agents      map[id.AgentID]*models.Agent
	identityIdx map[string]id.AgentID
}

func NewInMemory() *InMemory {
	return &InMemory{
		agents:      make(map[id.AgentID]*models.Agent),
		identityIdx: make(map[string]id.AgentID),
	}
}

// Create inserts a new agent unless its ID or identity number is already taken.
func (s *InMemory) Create(_ context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("agent is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[a.ID]; exists {
		return fmt.Errorf("agent id already exists: %w", ErrAlreadyUsed)
	}
	key := identityKey(a.IdentityType, a.IdentityNumber())
	if _, exists := s.identityIdx[key]; exists {
		return fmt.Errorf("identity number must be unique: %w", ErrAlreadyUsed)
	}
	s.agents[a.ID] = a.Clone()
	s.identityIdx[key] = a.ID
	return nil
}

// Update replaces an existing agent, moving its identity index entry when the number changed.
func (s *InMemory) Update(_ context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("agent is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.agents[a.ID]
	if !ok {
		return ErrNotFound
	}
	oldKey := identityKey(current.IdentityType, current.IdentityNumber())
	newKey := identityKey(a.IdentityType, a.IdentityNumber())
	if oldKey != newKey {
		if owner, exists := s.identityIdx[newKey]; exists && owner != a.ID {
			return fmt.Errorf("identity number must be unique: %w", ErrAlreadyUsed)
		}
		delete(s.identityIdx, oldKey)
		s.identityIdx[newKey] = a.ID
	}
	s.agents[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, agentID id.AgentID) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.agents[agentID]; ok {
		return a.Clone(), nil
	}
	return nil, ErrNotFound
}

// FindByIdentityNumber looks up an agent by its exact normalized identity number.
func (s *InMemory) FindByIdentityNumber(_ context.Context, t identity.Type, number string) (*models.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if agentID, ok := s.identityIdx[identityKey(t, number)]; ok {
		return s.agents[agentID].Clone(), nil
	}
	return nil, ErrNotFound
}

// List returns one page of agents matching f. f is expected to be normalized.
func (s *InMemory) List(_ context.Context, f models.Filter) (*models.Page, error) {
	s.mu.RLock()
	matched := make([]*models.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		if matches(a, f) {
			matched = append(matched, a.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Agent) int {
		c := compareAgents(a, b, f.SortBy)
		if f.SortDesc {
			return -c
		}
		return c
	})

	page := &models.Page{Total: len(matched), Limit: f.Limit, Offset: f.Offset, Items: []*models.Agent{}}
	if f.Offset >= len(matched) {
		return page, nil
	}
	end := min(f.Offset+f.Limit, len(matched))
	page.Items = matched[f.Offset:end]
	return page, nil
}

func compareAgents(a, b *models.Agent, sortBy models.SortField) int {
	if sortBy == models.SortByCreatedAt {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
	} else {
		if c := strings.Compare(strings.ToLower(a.Surname), strings.ToLower(b.Surname)); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)); c != 0 {
			return c
		}
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

func (s *InMemory) Delete(_ context.Context, agentID id.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[agentID]
	if !ok {
		return ErrNotFound
	}
	delete(s.identityIdx, identityKey(a.IdentityType, a.IdentityNumber()))
	delete(s.agents, agentID)
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.agents), nil
}
