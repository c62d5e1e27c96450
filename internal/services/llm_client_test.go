package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onceGenerator succeeds on the first call only.
type onceGenerator struct {
	calls int
}

func (o *onceGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	o.calls++
	if o.calls > 1 {
		return "", errors.New("unreachable")
	}
	return "answer:" + prompt, nil
}

func TestGenerateCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	gen := &onceGenerator{}
	client := NewLLMClient(gen, NewMemoryCacheStore(nil), 0.3, nil)

	first, err := client.Generate(ctx, "prompt", true)
	require.NoError(t, err)
	second, err := client.Generate(ctx, "prompt", true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateIsExactMatch(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{}
	gen.on("prompt", "r")
	client := NewLLMClient(gen, NewMemoryCacheStore(nil), 0.3, nil)

	_, err := client.Generate(ctx, "prompt", true)
	require.NoError(t, err)
	_, err = client.Generate(ctx, "prompt ", true)
	require.NoError(t, err)

	assert.Equal(t, 2, gen.Calls())
}

func TestGenerateWritesEvenWithoutCacheRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCacheStore(map[string]string{"other": "kept"})
	gen := &scriptedGenerator{}
	gen.on("p", "fresh")
	client := NewLLMClient(gen, store, 0.3, nil)

	got, err := client.Generate(ctx, "p", false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"other": "kept", "p": "fresh"}, entries)
}

func TestGenerateBypassesCacheReadWhenDisabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCacheStore(map[string]string{"p": "stale"})
	gen := &scriptedGenerator{}
	gen.on("p", "fresh")
	client := NewLLMClient(gen, store, 0.3, nil)

	got, err := client.Generate(ctx, "p", false)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, 1, gen.Calls())
}

func TestGenerateFailureFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCacheStore(map[string]string{"p": "cached"})
	gen := &scriptedGenerator{}
	gen.fail("p", errors.New("quota"))
	client := NewLLMClient(gen, store, 0.3, nil)

	got, err := client.Generate(ctx, "p", false)
	require.NoError(t, err)
	assert.Equal(t, "cached", got)
}

func TestGenerateFailureWithoutCache(t *testing.T) {
	gen := &scriptedGenerator{}
	gen.fail("p", errors.New("quota"))
	client := NewLLMClient(gen, NewMemoryCacheStore(nil), 0.3, nil)

	_, err := client.Generate(context.Background(), "p", true)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateSurvivesBrokenStore(t *testing.T) {
	gen := &scriptedGenerator{}
	gen.on("p", "ok")
	client := NewLLMClient(gen, brokenStore{}, 0.3, nil)

	got, err := client.Generate(context.Background(), "p", true)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

type echoGenerator struct{}

func (echoGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return "answer:" + prompt, nil
}

func TestConcurrentWritersAndReadersOnFileCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "llm_cache.json")
	store := NewFileCacheStore(path)

	const workers = 40
	var wg sync.WaitGroup
	genErrs := make(chan error, workers)
	loadErrs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			client := NewLLMClient(echoGenerator{}, NewFileCacheStore(path), 0.3, nil)
			prompt := fmt.Sprintf("prompt-%d", i)
			got, err := client.Generate(ctx, prompt, true)
			if err == nil && got != "answer:"+prompt {
				err = fmt.Errorf("prompt %s answered with %q", prompt, got)
			}
			genErrs <- err
		}(i)
		go func() {
			defer wg.Done()
			entries, err := store.Load(ctx)
			if err == nil {
				err = checkCompletePairs(entries)
			}
			loadErrs <- err
		}()
	}
	wg.Wait()
	close(genErrs)
	close(loadErrs)

	for err := range genErrs {
		assert.NoError(t, err)
	}
	for err := range loadErrs {
		assert.NoError(t, err)
		assert.NotErrorIs(t, err, ErrCacheIO)
	}

	final, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, final)
	assert.LessOrEqual(t, len(final), workers)
	assert.NoError(t, checkCompletePairs(final))
}

func checkCompletePairs(entries map[string]string) error {
	for prompt, response := range entries {
		if !strings.HasPrefix(prompt, "prompt-") || response != "answer:"+prompt {
			return fmt.Errorf("torn entry %q -> %q", prompt, response)
		}
	}
	return nil
}

func TestInterleavedSavesLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCacheStore(map[string]string{"seed": "s"})

	first, err := store.Load(ctx)
	require.NoError(t, err)
	second, err := store.Load(ctx)
	require.NoError(t, err)

	first["a"] = "from first"
	require.NoError(t, store.Save(ctx, first))
	second["b"] = "from second"
	require.NoError(t, store.Save(ctx, second))

	final, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"seed": "s", "b": "from second"}, final)
}
