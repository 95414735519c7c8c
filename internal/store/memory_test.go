package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fareroute/backend-go/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	inserted, err := s.InsertIfAbsent(ctx, models.Station{Line: "L1", Name: "A", Position: 0})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertIfAbsent(ctx, models.Station{Line: "L1", Name: "B", Position: 10})
	require.NoError(t, err)
	assert.True(t, inserted)

	t.Run("duplicate name is not inserted", func(t *testing.T) {
		inserted, err := s.InsertIfAbsent(ctx, models.Station{Line: "L2", Name: "A", Position: 99})
		require.NoError(t, err)
		assert.False(t, inserted)

		got, err := s.FindByName(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "L1", got.Line)
		assert.Equal(t, 0.0, got.Position)
	})

	t.Run("missing name returns nil", func(t *testing.T) {
		got, err := s.FindByName(ctx, "Z")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("list keeps insertion order and returns a copy", func(t *testing.T) {
		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "A", all[0].Name)
		assert.Equal(t, "B", all[1].Name)
		assert.Less(t, all[0].Seq, all[1].Seq)

		all[0].Name = "mutated"
		again, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "A", again[0].Name)
	})

	t.Run("delete all empties the store", func(t *testing.T) {
		require.NoError(t, s.DeleteAll(ctx))

		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		got, err := s.FindByName(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, got)

		inserted, err := s.InsertIfAbsent(ctx, models.Station{Line: "L3", Name: "A", Position: 5})
		require.NoError(t, err)
		assert.True(t, inserted)
	})
}

func TestMemoryStoreConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inserted, err := s.InsertIfAbsent(ctx, models.Station{Line: fmt.Sprintf("L%d", i), Name: "Shared", Position: float64(i)})
			assert.NoError(t, err)
			if inserted {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
