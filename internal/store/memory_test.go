package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, s Store, id string) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	created, err := s.Put(ctx, id, Patch{Title: String("Supply"), ContractHTML: String("<p>{{COND:a}}</p>")})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "Supply", created.Title)
	assert.Equal(t, "", created.Questionnaire)
	assert.False(t, created.UpdatedAt.IsZero())

	updated, err := s.Put(ctx, id, Patch{Questionnaire: String(`{"sections":[],"conditionals":{}}`)})
	require.NoError(t, err)
	assert.Equal(t, "<p>{{COND:a}}</p>", updated.ContractHTML)
	assert.Equal(t, `{"sections":[],"conditionals":{}}`, updated.Questionnaire)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Supply", got.Title)
	assert.Equal(t, "<p>{{COND:a}}</p>", got.ContractHTML)
	assert.Equal(t, updated.Questionnaire, got.Questionnaire)

	// an empty string is a value, not an omission
	_, err = s.Put(ctx, id, Patch{Questionnaire: String("")})
	require.NoError(t, err)
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", got.Questionnaire)
	assert.Equal(t, "<p>{{COND:a}}</p>", got.ContractHTML)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), "t1")
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Put(ctx, "t1", Patch{Title: String("a")})
	require.NoError(t, err)

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	got.Title = "changed"

	again, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	_, err := s.Put(ctx, "t1", Patch{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Get(ctx, "t1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreTimestamps(t *testing.T) {
	s := NewMemoryStore().(*memoryStore)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	got, err := s.Put(context.Background(), "t1", Patch{})
	require.NoError(t, err)
	assert.Equal(t, fixed, got.UpdatedAt)
}

func TestMemoryStoreConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Put(ctx, "shared", Patch{Title: String("x")})
			assert.NoError(t, err)
			_, err = s.Get(ctx, "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Title: String("")}.IsEmpty())
}
