// Package store provides StationStore backends.
package store

import (
	"context"
	"sync"

	"github.com/fareroute/backend-go/internal/models"
)

// MemoryStore keeps stations in process. It is the default backend.
type MemoryStore struct {
	mu       sync.RWMutex
	stations []models.Station
	byName   map[string]int
	nextSeq  int64
}

var _ models.StationStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stations: make([]models.Station, 0),
		byName:   make(map[string]int),
	}
}

func (m *MemoryStore) InsertIfAbsent(_ context.Context, s models.Station) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[s.Name]; exists {
		return false, nil
	}

	m.nextSeq++
	s.Seq = m.nextSeq
	m.byName[s.Name] = len(m.stations)
	m.stations = append(m.stations, s)
	return true, nil
}

func (m *MemoryStore) FindByName(_ context.Context, name string) (*models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byName[name]
	if !ok {
		return nil, nil
	}
	s := m.stations[idx]
	return &s, nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]models.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Station, len(m.stations))
	copy(out, m.stations)
	return out, nil
}

func (m *MemoryStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stations = make([]models.Station, 0)
	m.byName = make(map[string]int)
	return nil
}
