package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"docrank/internal/embedding"
	"docrank/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Upserting an existing ID replaces its vector in place.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	index     map[string]int
	vectors   [][]float64
}

var _ vectorstore.Storage = (*Storage)(nil)

func NewStorage() *Storage { return &Storage{index: make(map[string]int)} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.reset()
	return nil
}

func (s *Storage) Upsert(ids []string, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("storage not initialised")
	}
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %q: dimension %d, want %d", ids[i], len(v), s.dimension)
		}
	}
	for i, id := range ids {
		if j, ok := s.index[id]; ok {
			s.vectors[j] = vectors[i]
			continue
		}
		s.index[id] = len(s.ids)
		s.ids = append(s.ids, id)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

// Search scores every stored vector against the query. Ties keep insertion
// order.
func (s *Storage) Search(vector []float64, topK int) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(vector), s.dimension)
	}
	results := make([]vectorstore.Match, len(s.ids))
	for i := range s.vectors {
		results[i] = vectorstore.Match{ID: s.ids[i], Score: embedding.Cosine(s.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Storage) reset() {
	s.ids = nil
	s.vectors = nil
	s.index = make(map[string]int)
}
