package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sportspal_server/models"
)

func TestProfileCacheTTL(t *testing.T) {
	pc := NewProfileCache()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pc.now = func() time.Time { return base }

	_, ok := pc.Get("u1")
	require.False(t, ok)

	pc.Put(models.Profile{UID: "u1", Username: "runner"})

	got, ok := pc.Get("u1")
	require.True(t, ok)
	require.Equal(t, "runner", got.Username)

	// Expired entries read as misses
	pc.now = func() time.Time { return base.Add(ProfileCacheTTL + time.Second) }
	_, ok = pc.Get("u1")
	require.False(t, ok)
}

func TestProfileCacheInvalidate(t *testing.T) {
	pc := NewProfileCache()
	pc.Put(models.Profile{UID: "u1", Username: "runner"})
	pc.Invalidate("u1")

	_, ok := pc.Get("u1")
	require.False(t, ok)
}
