package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAssignsIDAndGetRoundTrips(t *testing.T) {
	s := NewMemoryStore()
	r := Record{Kind: KindTrace, CreatedAt: time.Now()}
	require.NoError(t, s.Save(context.Background(), r))

	// Save takes the record by value, so the assigned ID is read back
	// from the store rather than from r.
	page, err := s.List(context.Background(), "", 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	id := page.Records[0].ID
	require.NotEqual(t, uuid.Nil, id)

	got, ok, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, KindTrace, got.Kind)
}

func TestMemoryStore_GetUnknownIDReturnsFalse(t *testing.T) {
	s := NewMemoryStore()
	_, ok, err := s.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_ListFiltersByKindAndPaginates(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(context.Background(), Record{
			Kind:      KindTrace,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	require.NoError(t, s.Save(context.Background(), Record{Kind: KindSimulate, CreatedAt: base}))

	page, err := s.List(context.Background(), KindTrace, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Records, 2)
	require.True(t, page.HasMore)

	// Most recent first.
	require.True(t, page.Records[0].CreatedAt.After(page.Records[1].CreatedAt))

	lastPage, err := s.List(context.Background(), KindTrace, 2, 4)
	require.NoError(t, err)
	require.Len(t, lastPage.Records, 1)
	require.False(t, lastPage.HasMore)
}
