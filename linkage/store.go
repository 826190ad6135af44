package linkage

import (
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("record not found")

// Store is an in-memory record set keyed by id. Reads return copies.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: map[string]Record{}}
}

// Seed adds the demo people.
func (s *Store) Seed() {
	s.Put(Record{ID: "1", GivenName: Some("Alice"), FamilyName: Some("Anderson")})
	s.Put(Record{ID: "2", GivenName: Some("Bob"), FamilyName: Some("Brown")})
}

func (s *Store) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
}

func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// List returns all records sorted by given name, then id.
func (s *Store) List() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].GivenName.OrElse(""), out[j].GivenName.OrElse("")
		if gi != gj {
			return gi < gj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
