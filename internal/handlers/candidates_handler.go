package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/repositories"
	"alfredoptarigan/candidate-scorer/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CandidateHandler struct {
	candidateRepo repositories.CandidateRepository
	evalRepo      repositories.EvaluationRepository
	index         services.CandidateIndex
}

func NewCandidateHandler(
	candidateRepo repositories.CandidateRepository,
	evalRepo repositories.EvaluationRepository,
	index services.CandidateIndex,
) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		evalRepo:      evalRepo,
		index:         index,
	}
}

// HandleList handles GET /candidates
func (h *CandidateHandler) HandleList(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", defaultPageSize)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	candidates, err := h.candidateRepo.List(skip, limit)
	if err != nil {
		return err
	}

	total, err := h.candidateRepo.Count()
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.ID)
	}
	latest, err := h.evalRepo.LatestByCandidates(ids)
	if err != nil {
		return err
	}

	summaries := make([]models.CandidateSummary, 0, len(candidates))
	for _, cand := range candidates {
		summary := models.CandidateSummary{
			ID:        cand.ID.String(),
			Name:      cand.Name,
			Filename:  cand.Filename,
			CreatedAt: cand.CreatedAt,
		}
		if eval, ok := latest[cand.ID]; ok {
			summary.TotalScore = eval.TotalScore
			summary.Status = string(eval.Status)
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(models.CandidateListResponse{
		Candidates: summaries,
		Skip:       skip,
		Limit:      limit,
		Total:      total,
	})
}

// HandleSimilar handles GET /candidates/similar
func (h *CandidateHandler) HandleSimilar(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", 5)
	if limit <= 0 || limit > maxPageSize {
		limit = 5
	}

	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Candidate index is not configured",
		})
	}

	matches, err := h.index.SearchSimilar(c.UserContext(), query, limit)
	if err != nil {
		if errors.Is(err, services.ErrIndexDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Candidate index is not configured",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"query":      query,
		"candidates": matches,
	})
}
