package persona

// Store exposes persona lookup for the orchestrator and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	AllEndingPhrases() []string
}

// MemoryStore implements Store with an in-memory slice. The registry is
// static configuration, so no locking is needed.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the registered personas.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by mode identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// AllEndingPhrases returns the union of every persona's ending-phrase set.
// Ending detection is deliberately mode-agnostic: any persona's closing
// formula terminates the call.
func (s *MemoryStore) AllEndingPhrases() []string {
	var phrases []string
	for _, item := range s.items {
		phrases = append(phrases, item.EndingPhrases...)
	}
	return phrases
}
