package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/flextime/pkg/dateutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFirstDateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.FirstDate(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetFirstDate(ctx, "user-1", dateutil.Date(2023, time.March, 14)))

	date, ok, err := s.FirstDate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dateutil.Date(2023, time.March, 14), date)

	_, ok, err = s.FirstDate(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, ok, "entries are per user")
}

func TestSetFirstDateOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFirstDate(ctx, "user-1", dateutil.Date(2023, time.March, 14)))
	require.NoError(t, s.SetFirstDate(ctx, "user-1", dateutil.Date(2023, time.February, 1)))

	date, ok, err := s.FirstDate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dateutil.Date(2023, time.February, 1), date)
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFirstDate(ctx, "user-1", dateutil.Date(2023, time.March, 14)))
	require.NoError(t, s.SetFirstDate(ctx, "user-2", dateutil.Date(2024, time.March, 14)))

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err := s.FirstDate(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.SetFirstDate(ctx, "user-1", dateutil.Date(2023, time.May, 2)))
	require.NoError(t, s.Close())

	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	date, ok, err := s.FirstDate(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dateutil.Date(2023, time.May, 2), date)
	assert.Equal(t, path, s.Path())
}
