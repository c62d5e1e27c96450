package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

// ErrIndexDisabled is returned by searches when no vector store is configured.
var ErrIndexDisabled = errors.New("candidate index disabled")

const (
	resumeChunkSize    = 1000
	resumeChunkOverlap = 200
	snippetLength      = 240
)

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CandidateIndex keeps resumes searchable by similarity.
type CandidateIndex interface {
	IndexCandidate(ctx context.Context, candidateID string, name *string, totalScore float64, resumeText string) error
	SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarCandidate, error)
}

type candidateIndex struct {
	store    VectorStore
	embedder Embedder
	chunker  TextChunker
	log      *zap.Logger
}

// NewCandidateIndex returns a disabled index when store is nil.
func NewCandidateIndex(store VectorStore, embedder Embedder, chunker TextChunker, log *zap.Logger) CandidateIndex {
	if chunker == nil {
		chunker = NewTextChunker()
	}
	return &candidateIndex{store: store, embedder: embedder, chunker: chunker, log: logger.OrNop(log)}
}

// IndexCandidate implements CandidateIndex. Previous chunks of the candidate are replaced.
func (c *candidateIndex) IndexCandidate(ctx context.Context, candidateID string, name *string, totalScore float64, resumeText string) error {
	if c.store == nil {
		return nil
	}

	if err := c.store.DeleteCandidate(ctx, candidateID); err != nil {
		return fmt.Errorf("failed to clear candidate %s: %w", candidateID, err)
	}

	var candidateName string
	if name != nil {
		candidateName = *name
	}

	chunks := c.chunker.ChunkText(resumeText, resumeChunkSize, resumeChunkOverlap)
	for i, text := range chunks {
		embedding, err := c.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunk := ResumeChunk{
			CandidateID:   candidateID,
			CandidateName: candidateName,
			TotalScore:    totalScore,
			Index:         i,
			Text:          text,
		}
		if err := c.store.UpsertChunk(ctx, chunk, embedding); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}

	c.log.Info("candidate indexed", zap.String("candidate_id", candidateID), zap.Int("chunks", len(chunks)))
	return nil
}

// SearchSimilar implements CandidateIndex. Hits are grouped per candidate,
// keeping each candidate's best chunk.
func (c *candidateIndex) SearchSimilar(ctx context.Context, query string, limit int) ([]models.SimilarCandidate, error) {
	if c.store == nil {
		return nil, ErrIndexDisabled
	}
	if limit <= 0 {
		limit = 5
	}

	embedding, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Over-fetch: several chunks usually belong to the same candidate.
	hits, err := c.store.SearchSimilar(ctx, embedding, limit*4)
	if err != nil {
		return nil, err
	}

	best := map[string]SearchResult{}
	for _, h := range hits {
		if h.CandidateID == "" {
			continue
		}
		if prev, ok := best[h.CandidateID]; !ok || h.Score > prev.Score {
			best[h.CandidateID] = h
		}
	}

	out := make([]models.SimilarCandidate, 0, len(best))
	for id, h := range best {
		sc := models.SimilarCandidate{
			CandidateID: id,
			Score:       h.Score,
			TotalScore:  h.TotalScore,
			Snippet:     logger.TruncateForLog(h.Text, snippetLength),
		}
		if h.CandidateName != "" {
			name := h.CandidateName
			sc.Name = &name
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
