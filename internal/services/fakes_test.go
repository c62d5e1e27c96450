package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// scriptedGenerator answers prompts by the first matching substring rule.
type scriptedGenerator struct {
	mu    sync.Mutex
	rules []generatorRule
	calls int
}

type generatorRule struct {
	contains string
	response string
	err      error
}

func (g *scriptedGenerator) on(contains, response string) *scriptedGenerator {
	g.rules = append(g.rules, generatorRule{contains: contains, response: response})
	return g
}

func (g *scriptedGenerator) fail(contains string, err error) *scriptedGenerator {
	g.rules = append(g.rules, generatorRule{contains: contains, err: err})
	return g
}

func (g *scriptedGenerator) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	for _, r := range g.rules {
		if strings.Contains(prompt, r.contains) {
			return r.response, r.err
		}
	}
	return "", errors.New("no scripted response")
}

func (g *scriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type brokenStore struct{}

func (brokenStore) Load(ctx context.Context) (map[string]string, error) {
	return nil, ErrCacheIO
}

func (brokenStore) Save(ctx context.Context, entries map[string]string) error {
	return ErrCacheIO
}

func strPtr(s string) *string { return &s }
