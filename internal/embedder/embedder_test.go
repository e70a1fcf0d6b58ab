package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	l, err := NewLocalProvider(nil)
	require.NoError(t, err)

	a, err := l.Embed(context.Background(), "bias-variance tradeoff")
	require.NoError(t, err)
	b, err := l.Embed(context.Background(), "bias-variance tradeoff")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, LocalDimension)
}

func TestLocalProvider_DistinctTextsDistinctVectors(t *testing.T) {
	l, err := NewLocalProvider(nil)
	require.NoError(t, err)

	a, err := l.Embed(context.Background(), "statistics")
	require.NoError(t, err)
	b, err := l.Embed(context.Background(), "operating systems")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLocalProvider_UnitLength(t *testing.T) {
	l, err := NewLocalProvider(nil)
	require.NoError(t, err)

	vec, err := l.Embed(context.Background(), "some text")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestLocalProvider_EmptyText(t *testing.T) {
	l, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = l.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProvider_BatchOrder(t *testing.T) {
	l, err := NewLocalProvider(nil)
	require.NoError(t, err)

	texts := []string{"one", "two", "three"}
	vectors, err := l.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for i, text := range texts {
		single, err := l.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}
}

func TestCache_RoundTrip(t *testing.T) {
	c := NewCache(10)
	hash := ComputeHash("hello")
	c.Set(hash, []float32{1, 2, 3})

	vec, ok := c.Get(hash)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)

	_, ok = c.Get(ComputeHash("other"))
	assert.False(t, ok)
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := NewCache(10)
	hash := ComputeHash("hello")
	c.Set(hash, []float32{1, 2, 3})

	vec, ok := c.Get(hash)
	require.True(t, ok)
	vec[0] = 99

	fresh, ok := c.Get(hash)
	require.True(t, ok)
	assert.Equal(t, float32(1), fresh[0])
}

func TestValidateTexts(t *testing.T) {
	assert.Error(t, validateTexts(nil))
	assert.Error(t, validateTexts([]string{"ok", ""}))
	assert.NoError(t, validateTexts([]string{"ok", "also ok"}))
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	assert.Equal(t, v, NormalizeVector(v))
}

func TestNewFromEnv_ExplicitLocal(t *testing.T) {
	t.Setenv(EnvProvider, "local")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderLocal, emb.Provider())
	assert.Equal(t, LocalDimension, emb.Dimension())
}

func TestNewFromEnv_UnknownProvider(t *testing.T) {
	t.Setenv(EnvProvider, "cohere")

	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNew_RequiresKnownProvider(t *testing.T) {
	_, err := New(Config{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestDetectProvider_Default(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvJinaAPIKey, "")

	assert.Equal(t, ProviderLocal, DetectProvider())
}
