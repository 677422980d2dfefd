package session

import (
	"context"
	"testing"
	"time"

	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/planner"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopGenerator struct{}

func (nopGenerator) Generate(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	return llm.ContentResponse{}, nil
}

func newStore(capacity int, ttl time.Duration) *Store {
	return NewStore(planner.NewPlanner(nopGenerator{}), capacity, ttl)
}

func TestCreateAndGet(t *testing.T) {
	s := newStore(4, time.Hour)

	id, sess := s.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestGetOrCreate(t *testing.T) {
	s := newStore(4, time.Hour)

	a := s.GetOrCreate("tg:42")
	b := s.GetOrCreate("tg:42")
	c := s.GetOrCreate("tg:43")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())

	s.Remove("tg:42")
	assert.NotSame(t, a, s.GetOrCreate("tg:42"))
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := newStore(2, time.Hour)
	s.GetOrCreate("a")
	s.GetOrCreate("b")
	s.GetOrCreate("c")

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestSessionsExpire(t *testing.T) {
	s := newStore(4, 50*time.Millisecond)
	id, _ := s.Create()

	time.Sleep(30 * time.Millisecond)
	_, ok := s.Get(id)
	require.True(t, ok, "access extends the ttl")

	time.Sleep(30 * time.Millisecond)
	_, ok = s.Get(id)
	require.True(t, ok)

	time.Sleep(150 * time.Millisecond)
	_, ok = s.Get(id)
	assert.False(t, ok)
}
