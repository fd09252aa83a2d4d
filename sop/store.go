package sop

import (
	"fmt"
	"sync"
	"time"
)

// SOPStore manages SOP document persistence and retrieval.
type SOPStore interface {
	// Add a new SOP document
	Add(s *SOP) error

	// Get a SOP by ID
	Get(id string) (*SOP, error)

	// List all SOPs, oldest first
	List() ([]*SOP, error)

	// Update an existing SOP
	Update(s *SOP) error

	// Delete a SOP
	Delete(id string) error
}

// InMemorySOPStore implements SOPStore using an in-memory map.
// Thread-safe with RWMutex.
type InMemorySOPStore struct {
	sops map[string]*SOP
	mu   sync.RWMutex
}

// NewInMemorySOPStore creates a new in-memory SOP store.
func NewInMemorySOPStore() *InMemorySOPStore {
	return &InMemorySOPStore{
		sops: make(map[string]*SOP),
	}
}

// Add adds a new SOP to the store, setting both timestamps.
func (s *InMemorySOPStore) Add(doc *SOP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sops[doc.ID]; exists {
		return fmt.Errorf("sop with ID %s already exists", doc.ID)
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.sops[doc.ID] = doc
	return nil
}

// Get retrieves a SOP by ID.
func (s *InMemorySOPStore) Get(id string) (*SOP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.sops[id]
	if !exists {
		return nil, fmt.Errorf("sop with ID %s not found", id)
	}
	return doc, nil
}

// List returns all SOPs ordered by creation time, oldest first.
func (s *InMemorySOPStore) List() ([]*SOP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*SOP, 0, len(s.sops))
	for _, doc := range s.sops {
		docs = append(docs, doc)
	}
	// Stable order for callers; map iteration order is not.
	for i := 1; i < len(docs); i++ {
		for j := i; j > 0 && docs[j].CreatedAt.Before(docs[j-1].CreatedAt); j-- {
			docs[j], docs[j-1] = docs[j-1], docs[j]
		}
	}
	return docs, nil
}

// Update updates an existing SOP, preserving the original CreatedAt.
func (s *InMemorySOPStore) Update(doc *SOP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.sops[doc.ID]
	if !exists {
		return fmt.Errorf("sop with ID %s not found", doc.ID)
	}

	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now()
	s.sops[doc.ID] = doc
	return nil
}

// Delete removes a SOP from the store.
func (s *InMemorySOPStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sops[id]; !exists {
		return fmt.Errorf("sop with ID %s not found", id)
	}

	delete(s.sops, id)
	return nil
}
