package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/AngelCh415/funnel_go/internal/models"
)

// MemoryStore keeps the most recent analyses so the dashboard can fetch
// charts and table pages after an upload. Nothing survives a restart.
type MemoryStore struct {
	cache *lru.Cache[string, *models.Analysis]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, *models.Analysis](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c}, nil
}

// Put stores a, replacing any analysis with the same id.
func (s *MemoryStore) Put(a *models.Analysis) {
	s.cache.Add(a.ID, a)
}

func (s *MemoryStore) Get(id string) (*models.Analysis, bool) {
	return s.cache.Get(id)
}

func (s *MemoryStore) Len() int { return s.cache.Len() }
