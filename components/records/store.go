package records

import (
	"fmt"
	"sort"
	"sync"
)

// Store is a concurrency-safe record collection.
type Store struct {
	mu      sync.RWMutex
	idField string
	records map[string]Record
}

func NewStore(idField string, seed ...Record) *Store {
	s := &Store{idField: idField, records: make(map[string]Record)}
	for _, rec := range seed {
		id, ok := rec[idField]
		if !ok || id == nil {
			continue
		}
		s.records[fmt.Sprint(id)] = copyRecord(rec)
	}
	return s
}

func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return copyRecord(rec), true
}

func (s *Store) Put(id string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = copyRecord(rec)
	rec[s.idField] = id
	s.records[id] = rec
}

// List returns every record ordered by id.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRecord(s.records[id]))
	}
	return out
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for key, value := range rec {
		out[key] = value
	}
	return out
}
