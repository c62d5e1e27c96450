package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/services"
)

type ScoreHandler struct {
	evaluator   services.EvaluatorService
	maxFileSize int64
	log         *zap.Logger
}

func NewScoreHandler(evaluator services.EvaluatorService, maxFileSize int64, log *zap.Logger) *ScoreHandler {
	return &ScoreHandler{
		evaluator:   evaluator,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// ScoreResponse is a completed scoring run plus the ids it was stored under.
type ScoreResponse struct {
	EvaluationID string `json:"evaluation_id"`
	CandidateID  string `json:"candidate_id"`
	*models.ScoreResult
}

// HandleScore handles POST /score
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	req, err := parseScoreForm(c, h.maxFileSize)
	if err != nil {
		return err
	}

	result, evaluation, err := h.evaluator.ScoreNow(c.UserContext(), req)
	if err != nil {
		h.log.Warn("scoring failed", zap.String("filename", req.Document.Filename), zap.Error(err))

		var stageErr *services.StageError
		if errors.Is(err, services.ErrFatalInput) && errors.As(err, &stageErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": stageErr.Err.Error(),
				"stage": stageErr.Stage,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to score candidate",
		})
	}

	return c.JSON(ScoreResponse{
		EvaluationID: evaluation.ID.String(),
		CandidateID:  evaluation.CandidateID.String(),
		ScoreResult:  result,
	})
}
