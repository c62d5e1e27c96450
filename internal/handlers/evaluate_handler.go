package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/candidate-scorer/internal/models"
	"alfredoptarigan/candidate-scorer/internal/services"
)

type EvaluationHandler struct {
	evaluator   services.EvaluatorService
	worker      services.Worker
	maxFileSize int64
}

func NewEvaluationHandler(
	evaluator services.EvaluatorService,
	worker services.Worker,
	maxFileSize int64,
) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator:   evaluator,
		worker:      worker,
		maxFileSize: maxFileSize,
	}
}

// HandleEvaluate handles POST /evaluate
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	req, err := parseScoreForm(c, h.maxFileSize)
	if err != nil {
		return err
	}

	evaluation, err := h.evaluator.Submit(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create evaluation job",
		})
	}

	h.worker.EnqueueJob(evaluation.ID)

	// Return job ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.EvaluateResponse{
		ID:          evaluation.ID.String(),
		CandidateID: evaluation.CandidateID.String(),
		Status:      string(models.StatusQueued),
	})
}
