package ai_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/modreport/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, rueidis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return mr, client
}

func TestCacheReturnsStoredResult(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	next := &fixedClassifier{result: "violation (confidence 0.90)"}
	cache := ai.NewCache(next, "openai_policy", client, time.Hour, zap.NewNop())

	for range 3 {
		got, err := cache.Classify(t.Context(), reportedText)
		require.NoError(t, err)
		assert.Equal(t, "violation (confidence 0.90)", got)
	}
	assert.Equal(t, 1, next.calls)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))

	// A different message is classified separately
	_, err := cache.Classify(t.Context(), "have a nice day")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCacheScopesByBackends(t *testing.T) {
	t.Parallel()

	_, client := setupRedis(t)
	first := ai.NewCache(&fixedClassifier{result: "first"}, "echo", client, 0, zap.NewNop())
	second := ai.NewCache(&fixedClassifier{result: "second"}, "gemini", client, 0, zap.NewNop())

	got, err := first.Classify(t.Context(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = second.Classify(t.Context(), "same text")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	t.Parallel()

	mr, client := setupRedis(t)
	cache := ai.NewCache(&fixedClassifier{err: ai.ErrEmptyResponse}, "echo", client, 0, zap.NewNop())

	_, err := cache.Classify(t.Context(), "text")
	require.ErrorIs(t, err, ai.ErrEmptyResponse)
	assert.Empty(t, mr.Keys())
}
